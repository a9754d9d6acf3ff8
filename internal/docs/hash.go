package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/footnotelinker/internal/frontmatter"
)

// Fingerprint computes the content fingerprint of a document from its front
// matter fields and Markdown body. Keys are serialized in sorted order and a
// stored fingerprint field is ignored, so reordering front matter or
// recording the fingerprint itself does not change the result.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		forHash[k] = v
	}

	serialized, err := frontmatter.SerializeYAML(forHash)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), string(body)), nil
}

// SetHash computes a deterministic hash of a set of documents. Files must be
// sorted by relative path, as Discover returns them.
func SetHash(files []DocFile) string {
	h := sha256.New()
	for _, f := range files {
		sum := sha256.Sum256(f.Content)
		h.Write([]byte(f.RelativePath))
		h.Write([]byte{'|'})
		h.Write([]byte(hex.EncodeToString(sum[:])))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
