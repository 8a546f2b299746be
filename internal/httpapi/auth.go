package httpapi

import (
	"net/http"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/config"
)

// tokenHeaderLen is len(access_key) + len(secret_key) (§3: 16 + 32 chars).
const tokenHeaderLen = 16 + 32

// authenticate decodes the MINSQL-TOKEN header (§6: "bearer header
// MINSQL-TOKEN: <access_key><secret_key>") and resolves it against cfg.
func authenticate(r *http.Request, cfg *config.Config) (*config.Token, error) {
	raw := r.Header.Get("MINSQL-TOKEN")
	if len(raw) != tokenHeaderLen {
		return nil, cmn.AuthFailure("malformed MINSQL-TOKEN header")
	}
	accessKey, secretKey := raw[:16], raw[16:]
	return cfg.ResolveToken(accessKey, secretKey)
}
