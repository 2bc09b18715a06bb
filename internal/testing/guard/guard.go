package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("LODGELINE_TEST_MODE") == "" {
			_ = os.Setenv("LODGELINE_TEST_MODE", "1")
		}
	})
}
