package documents

import (
	"time"

	"github.com/limitless-hr/hris/internal/signature"
)

// SignerStatus tracks one required signer.
type SignerStatus string

const (
	StatusPending SignerStatus = "pending"
	StatusSigned  SignerStatus = "signed"
)

// SignerEntry is one required signature on a document.
type SignerEntry struct {
	Signer   string       `json:"signer"`
	SignedAt *time.Time   `json:"signedAt,omitempty"`
	Status   SignerStatus `json:"status"`
}

// Document is a file that needs signatures.
type Document struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Type       string             `json:"type"`
	Owner      string             `json:"owner"`
	UploadedAt time.Time          `json:"uploadedAt"`
	Signers    []SignerEntry      `json:"signers"`
	Signatures []signature.Record `json:"signatures,omitempty"`
}

// FullySigned reports whether every entry is signed.
func (d Document) FullySigned() bool {
	if len(d.Signers) == 0 {
		return false
	}
	for _, s := range d.Signers {
		if s.Status != StatusSigned {
			return false
		}
	}
	return true
}

func (d Document) clone() Document {
	out := d
	out.Signers = make([]SignerEntry, len(d.Signers))
	for i, s := range d.Signers {
		if s.SignedAt != nil {
			at := *s.SignedAt
			s.SignedAt = &at
		}
		out.Signers[i] = s
	}
	out.Signatures = append([]signature.Record(nil), d.Signatures...)
	return out
}
