// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// BuildFunc runs one build. clean is true only for the first build of a session.
type BuildFunc func(ctx context.Context, clean bool) error

type Options struct {
	Port int
	// Root is the build output directory that gets served.
	Root string
	// Watch lists source directories and files. Missing entries are ignored.
	Watch  []string
	Logger *slog.Logger
}

const debounceDuration = 500 * time.Millisecond

// Run builds once, then serves Root with live reload until ctx is canceled.
func Run(ctx context.Context, opts Options, build BuildFunc) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := build(ctx, true); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	hub := newHub(logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(opts.Watch)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("Could not watch directory", "dir", dir, "error", err)
			continue
		}
		logger.Debug("Watching directory", "dir", dir)
	}

	go watchForChanges(ctx, watcher, hub, build, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	mux.Handle("/", liveReloadWrapper(http.FileServer(http.Dir(opts.Root))))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Serving %s on http://localhost%s\n", opts.Root, srv.Addr)
	fmt.Println("Press Ctrl+C to stop")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// watchDirs expands paths into the sorted set of directories to watch.
// Directories are walked recursively; a file contributes its parent so that
// editors which save by swapping files are still noticed.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not stat path %s: %w", path, err)
		}

		if !info.IsDir() {
			seen[filepath.Clean(filepath.Dir(path))] = true
			continue
		}
		err = filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				seen[filepath.Clean(walkPath)] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func watchForChanges(ctx context.Context, watcher *fsnotify.Watcher, hub *Hub, build BuildFunc, logger *slog.Logger) {
	var lastBuildTime time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(lastBuildTime) <= debounceDuration {
				continue
			}
			time.Sleep(100 * time.Millisecond)

			logger.Info("Change detected, rebuilding", "path", event.Name)
			if err := build(ctx, false); err != nil {
				logger.Error("Rebuild failed", "error", err)
			} else {
				logger.Info("Rebuilt, triggering reload")
				hub.broadcastMessage([]byte("reload"))
			}
			lastBuildTime = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error", "error", err)
		}
	}
}

func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter(w)
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		body := iw.body.Bytes()
		if iw.statusCode != http.StatusOK {
			w.WriteHeader(iw.statusCode)
			_, _ = w.Write(body)
			return
		}

		injected := bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injected)))
		w.WriteHeader(iw.statusCode)
		_, _ = w.Write(injected)
	})
}

type interceptingWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter(w http.ResponseWriter) *interceptingWriter {
	return &interceptingWriter{
		ResponseWriter: w,
		body:           new(bytes.Buffer),
		header:         make(http.Header),
		statusCode:     http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection lost. Restart 'mongocdocs serve'.");
    };
  })();
</script>
`
