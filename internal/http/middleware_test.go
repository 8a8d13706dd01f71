package http

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/touchline/internal/http/handlers"
	"github.com/stretchr/testify/assert"
)

func TestParamsMiddleware(t *testing.T) {
	type seen struct {
		level  log.Level
		dryRun bool
	}
	capture := func(out *seen) http.Handler {
		return paramsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out.level = log.FromContext(r.Context()).GetLevel()
			out.dryRun = handlers.IsDryRunFromContext(r)
		}))
	}

	t.Run("verbose raises only the request logger", func(t *testing.T) {
		global := log.GetLevel()
		var got seen
		capture(&got).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?verbose=true&dry_run=true", nil))

		assert.Equal(t, log.DebugLevel, got.level)
		assert.True(t, got.dryRun)
		assert.Equal(t, global, log.GetLevel())
	})

	t.Run("parallel requests keep their own level", func(t *testing.T) {
		global := log.GetLevel()
		var wg sync.WaitGroup
		results := make([]seen, 20)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				target := "/x"
				if i%2 == 0 {
					target += "?verbose=true"
				}
				capture(&results[i]).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
			}(i)
		}
		wg.Wait()

		for i, got := range results {
			if i%2 == 0 {
				assert.Equal(t, log.DebugLevel, got.level)
			} else {
				assert.Equal(t, global, got.level)
			}
		}
		assert.Equal(t, global, log.GetLevel())
	})
}
