package intake

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// canonicalQuestion is the stable serialization used for hashing.
// Field order is fixed so the digest is reproducible across runs.
type canonicalQuestion struct {
	ID      string   `json:"id"`
	Options []string `json:"options,omitempty"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
}

// Fingerprint computes the blake3 digest of a question set's canonical
// JSON form. Two attempts see the same fingerprint exactly when the
// backend served the same questions in the same order, which is what
// makes previously recorded answers safe to replay on resume.
func Fingerprint(questions []Question) (string, error) {
	canonical := make([]canonicalQuestion, 0, len(questions))
	for _, q := range questions {
		cq := canonicalQuestion{
			ID:   q.ID,
			Text: q.Text,
			Type: string(q.Prompt.Kind()),
		}
		switch p := q.Prompt.(type) {
		case SingleSelect:
			cq.Options = p.Options
		case MultiSelect:
			cq.Options = p.Options
		}
		canonical = append(canonical, cq)
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("canonicalize question set: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(data); err != nil {
		return "", fmt.Errorf("hash question set: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
