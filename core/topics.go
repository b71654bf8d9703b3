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

import (
	"fmt"
	"strings"
)

// Topic is a curated category label assigned to a fragment during ingestion.
type Topic string

const (
	TopicSummary          Topic = "summary"
	TopicWeather          Topic = "weather"
	TopicAgronomyAdvisory Topic = "agronomy-advisory"
	TopicRice             Topic = "rice"
	TopicFieldCrops       Topic = "field-crops"
	TopicVegetables       Topic = "vegetables"
	TopicFruitTrees       Topic = "fruit-trees"
	TopicFlowers          Topic = "flowers"
	TopicSpecialCrops     Topic = "special-crops"
	TopicLivestock        Topic = "livestock"
	TopicBeekeeping       Topic = "beekeeping"
	// TopicOther is the catch-all for content ingestion could not classify.
	TopicOther Topic = "other"
)

// Topics is the curated vocabulary in display order.
var Topics = []Topic{
	TopicSummary,
	TopicWeather,
	TopicAgronomyAdvisory,
	TopicRice,
	TopicFieldCrops,
	TopicVegetables,
	TopicFruitTrees,
	TopicFlowers,
	TopicSpecialCrops,
	TopicLivestock,
	TopicBeekeeping,
	TopicOther,
}

// Bulletin labels as they appear in the source documents.
var topicLabels = map[Topic]string{
	TopicSummary:          "요약",
	TopicWeather:          "기상",
	TopicAgronomyAdvisory: "농업정보",
	TopicRice:             "벼",
	TopicFieldCrops:       "밭작물",
	TopicVegetables:       "채소",
	TopicFruitTrees:       "과수",
	TopicFlowers:          "화훼",
	TopicSpecialCrops:     "특용작물",
	TopicLivestock:        "축산",
	TopicBeekeeping:       "양봉",
	TopicOther:            "기타",
}

var topicsByLabel = func() map[string]Topic {
	m := make(map[string]Topic, len(topicLabels))
	for topic, label := range topicLabels {
		m[label] = topic
	}
	return m
}()

// Label returns the bulletin label for the topic ("양봉" for beekeeping).
// Unknown topics return their raw string.
func (t Topic) Label() string {
	if label, ok := topicLabels[t]; ok {
		return label
	}
	return string(t)
}

// Valid reports whether t belongs to the curated vocabulary.
func (t Topic) Valid() bool {
	_, ok := topicLabels[t]
	return ok
}

// ParseTopic resolves a canonical name or a bulletin label to a Topic.
// Surrounding and internal spaces are ignored so "요 약" resolves to summary.
func ParseTopic(s string) (Topic, error) {
	cleaned := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if t := Topic(cleaned); t.Valid() {
		return t, nil
	}
	if t, ok := topicsByLabel[cleaned]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTopic, s)
}

// TopicSet is a validated set of topics used as a query filter.
// The empty set means "no filter".
type TopicSet map[Topic]struct{}

// NewTopicSet builds a set from already-typed topics.
func NewTopicSet(topics ...Topic) TopicSet {
	set := make(TopicSet, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	return set
}

// ParseTopics validates raw filter strings against the vocabulary.
func ParseTopics(raw []string) (TopicSet, error) {
	set := make(TopicSet, len(raw))
	for _, s := range raw {
		t, err := ParseTopic(s)
		if err != nil {
			return nil, err
		}
		set[t] = struct{}{}
	}
	return set, nil
}

// Allows reports whether the filter admits topic t.
func (s TopicSet) Allows(t Topic) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[t]
	return ok
}

// Sorted returns the members in vocabulary order.
func (s TopicSet) Sorted() []Topic {
	out := make([]Topic, 0, len(s))
	for _, t := range Topics {
		if _, ok := s[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
