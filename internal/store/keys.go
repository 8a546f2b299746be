package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DataPrefix returns the date-partitioned key prefix a query's LIST must
// scan for a given log (§3: "minsql/<log>/").
func DataPrefix(log string) string {
	return fmt.Sprintf("minsql/%s/", log)
}

// NewObjectKey builds an MSL object key for a flush happening at t
// (§3: "minsql/<log>/<YYYY>/<MM>/<DD>/<HH>/<uuid>.msl.uncompacted").
// A fresh UUID (google/uuid) guarantees key uniqueness per write (§3
// invariant 5).
func NewObjectKey(log string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("minsql/%s/%04d/%02d/%02d/%02d/%s.msl.uncompacted",
		log, t.Year(), t.Month(), t.Day(), t.Hour(), uuid.NewString())
}

// MetaPrefix is the meta bucket's root prefix the meta loader lists.
const MetaPrefix = "minsql/meta/"

func MetaLogsKey(name string) string       { return "minsql/meta/logs/" + name }
func MetaDatastoresKey(name string) string { return "minsql/meta/datastores/" + name }
func MetaTokensKey(name string) string     { return "minsql/meta/tokens/" + name }
func MetaAuthKey(token, log string) string { return "minsql/meta/auth/" + token + "/" + log }
