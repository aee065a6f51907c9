package journal

import (
	// SQL drivers registered for Open.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)
