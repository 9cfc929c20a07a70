package corpus

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/gaiapet/clinicbot/internal/domain"
)

// Hash fields of a reference entry stored in Redis.
const (
	fieldQuestionID = "id_question"
	fieldQuestion   = "question"
	fieldSeq        = "seq"
	fieldEmbedding  = "embedding"
)

// parquetRow is one row of a corpus parquet file.
type parquetRow struct {
	QuestionID string    `parquet:"id_question"`
	Question   string    `parquet:"question,optional"`
	Embedding  []float32 `parquet:"embedding,list"`
}

// jsonRow is one element of a corpus JSON array.
type jsonRow struct {
	QuestionID flexibleID `json:"id_question"`
	Question   string     `json:"question"`
	Embedding  []float32  `json:"embedding"`
}

// flexibleID accepts both string and numeric question ids and keeps the string form.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id_question: %w", err)
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id_question: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}

// entryToHash converts a reference entry to a map for HSET.
func entryToHash(e domain.ReferenceEntry, seq int) map[string]string {
	return map[string]string{
		fieldQuestionID: e.QuestionID,
		fieldQuestion:   e.Text,
		fieldSeq:        strconv.Itoa(seq),
		fieldEmbedding:  string(vectorToBytes(e.Embedding)),
	}
}

// entryFromHash hydrates a reference entry from an HGETALL result map.
func entryFromHash(m map[string]string) (domain.ReferenceEntry, int, error) {
	id, ok := m[fieldQuestionID]
	if !ok {
		return domain.ReferenceEntry{}, 0, fmt.Errorf("missing %s field", fieldQuestionID)
	}

	seq, err := strconv.Atoi(m[fieldSeq])
	if err != nil {
		return domain.ReferenceEntry{}, 0, fmt.Errorf("parse %s: %w", fieldSeq, err)
	}

	var vec []float32
	if raw := m[fieldEmbedding]; raw != "" {
		vec, err = bytesToVector([]byte(raw))
		if err != nil {
			return domain.ReferenceEntry{}, 0, err
		}
	}

	return domain.ReferenceEntry{
		QuestionID: id,
		Text:       m[fieldQuestion],
		Embedding:  vec,
	}, seq, nil
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
