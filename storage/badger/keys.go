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


package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/almanac/core"
)

// Key prefixes for different data types
const (
	fragmentPrefix      = "frg:"
	fragmentKeyPrefix   = "frgkey:"
	fragmentYearPrefix  = "frgyr:"
	fragmentTopicPrefix = "frgtp:"
	checkpointPrefix    = "chkpt:"
)

// makeFragmentKey generates a key for a fragment by ID.
func makeFragmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", fragmentPrefix, id))
}

// makeFragmentLookupKey maps a fragment key string to its ID.
func makeFragmentLookupKey(key string) []byte {
	return []byte(fragmentKeyPrefix + key)
}

// makeFragmentYearKey generates a composite key for the year index.
// Format: prefix:year:id
func makeFragmentYearKey(year int, id core.ID) []byte {
	buf := makePartialFragmentYearKey(year)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makePartialFragmentYearKey generates a partial key for year queries.
// Years are written BigEndian so keys sort chronologically.
func makePartialFragmentYearKey(year int) []byte {
	buf := make([]byte, len(fragmentYearPrefix), len(fragmentYearPrefix)+10)
	copy(buf, fragmentYearPrefix)
	return binary.BigEndian.AppendUint16(buf, uint16(year))
}

// yearFromIndexKey extracts the year from a year index key.
func yearFromIndexKey(key []byte) int {
	return int(binary.BigEndian.Uint16(key[len(fragmentYearPrefix):]))
}

// idFromIndexKey extracts the trailing fragment ID of an index key.
func idFromIndexKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeFragmentTopicKey generates a composite key for the topic index.
// Format: prefix:topic:id
func makeFragmentTopicKey(topic core.Topic, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(makePartialFragmentTopicKey(topic), uint64(id))
}

// makePartialFragmentTopicKey generates a partial key for topic queries.
func makePartialFragmentTopicKey(topic core.Topic) []byte {
	return []byte(fragmentTopicPrefix + string(topic) + ":")
}

// makeCheckpointKey generates a key for an import source checkpoint.
func makeCheckpointKey(source string) []byte {
	return []byte(checkpointPrefix + source)
}
