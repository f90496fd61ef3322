package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/groundwork/core"
)

// Key prefixes for different data types
const (
	sourcePrefix      = "src:"
	sourceURLPrefix   = "srcurl:"
	sourceDatePrefix  = "srcd:"
	documentPrefix    = "doc:"
	documentSrcPrefix = "docsrc:"
	documentIDSeq     = "docseq"
	glossaryPrefix    = "gls:"
	featurePrefix     = "fea:"
	turnPrefix        = "turn:"
	turnDatePrefix    = "turnd:"
	turnIDSeq         = "turnseq"
	taskPrefix        = "task:"
)

// makeKey appends big-endian words to prefix so that lexicographic key
// order matches numeric order.
func makeKey(prefix string, words ...uint64) []byte {
	buf := make([]byte, len(prefix)+8*len(words))
	offset := copy(buf, prefix)
	for _, w := range words {
		binary.BigEndian.PutUint64(buf[offset:], w)
		offset += 8
	}
	return buf
}

func micros(t time.Time) uint64 {
	return uint64(t.UnixMicro())
}

func makeSourceKey(id core.ID) []byte {
	return makeKey(sourcePrefix, uint64(id))
}

func makeSourceURLKey(url string) []byte {
	return []byte(sourceURLPrefix + url)
}

// makeSourceDateKey generates a composite key for the added-at index.
// Format: prefix:timestamp:id
func makeSourceDateKey(addedAt time.Time, id core.ID) []byte {
	return makeKey(sourceDatePrefix, micros(addedAt), uint64(id))
}

func makeDocumentKey(id core.ID) []byte {
	return makeKey(documentPrefix, uint64(id))
}

// makeDocumentSourceKey generates a composite key for the source index.
// Format: prefix:sourceID:documentID
func makeDocumentSourceKey(sourceID, docID core.ID) []byte {
	return makeKey(documentSrcPrefix, uint64(sourceID), uint64(docID))
}

func makePartialDocumentSourceKey(sourceID core.ID) []byte {
	return makeKey(documentSrcPrefix, uint64(sourceID))
}

func makeGlossaryKey(id core.ID) []byte {
	return makeKey(glossaryPrefix, uint64(id))
}

func makeFeatureKey(id core.ID) []byte {
	return makeKey(featurePrefix, uint64(id))
}

func makeTurnKey(id core.ID) []byte {
	return makeKey(turnPrefix, uint64(id))
}

// makeTurnDateKey generates a composite key for the transcript date index.
// Format: prefix:timestamp:id
func makeTurnDateKey(timestamp time.Time, id core.ID) []byte {
	return makeKey(turnDatePrefix, micros(timestamp), uint64(id))
}

// makePartialTurnDateKey generates a partial key for date range queries.
func makePartialTurnDateKey(timestamp time.Time) []byte {
	return makeKey(turnDatePrefix, micros(timestamp))
}

func makeTaskKey(id string) []byte {
	return []byte(taskPrefix + id)
}
