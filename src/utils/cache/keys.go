// Package cache builds every redis key used by the settler. Keeping the
// builders in one place avoids the key collisions that ad hoc
// string-concatenation tends to produce.
package cache

import (
	"fmt"
)

const prefix = "onton"

// Click queue list
func ClickQueue() string {
	return prefix + ":queue:affiliate_clicks"
}

// Per-job lock lease
func JobLock(jobName string) string {
	return fmt.Sprintf("%s:lock:job:%s", prefix, jobName)
}
