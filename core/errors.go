// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidFragment indicates a Fragment failed validation.
	ErrInvalidFragment = errors.New("invalid fragment")

	// ErrEmptyContent indicates the Text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrUnknownTopic indicates a topic outside the curated vocabulary.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrInvalidKey indicates a malformed fragment key or week range.
	ErrInvalidKey = errors.New("invalid fragment key")

	// ErrInvalidDate indicates a malformed calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrKeyMismatch indicates the key disagrees with the fragment's temporal fields or topic.
	ErrKeyMismatch = errors.New("fragment key does not match fragment fields")

	// ErrInvalidWeek indicates a week that ends before it starts.
	ErrInvalidWeek = errors.New("week end before week start")
)
