// Package all registers every storage backend. Import it for side effects
// from main packages and integration tests:
//
//	import _ "github.com/giddr/aectransparencyreader/internal/store/all"
package all

import (
	_ "github.com/giddr/aectransparencyreader/internal/store/postgres"
	_ "github.com/giddr/aectransparencyreader/internal/store/sqlite"
)
