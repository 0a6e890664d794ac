package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/signed-url", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleSignedURL(w, r)
	})

	mux.HandleFunc("/presentations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleCreatePresentation(w, r)
	})

	mux.HandleFunc("/presentations/", func(w http.ResponseWriter, r *http.Request) {
		id, tail, ok := splitResourcePath(r.URL.Path, "/presentations/")
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch tail {
		case "":
			switch r.Method {
			case http.MethodGet:
				h.HandleGetPresentation(w, r, id)
			case http.MethodDelete:
				h.HandleDeletePresentation(w, r, id)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		case "files":
			switch r.Method {
			case http.MethodPost:
				h.HandleAddPresentationFile(w, r, id)
			case http.MethodGet:
				h.HandleListPresentationFiles(w, r, id)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		case "agents":
			switch r.Method {
			case http.MethodGet:
				h.HandleListPresentationAgents(w, r, id)
			case http.MethodPost:
				h.HandleLinkAgent(w, r, id)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		case "sessions":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleCreateSession(w, r, id)
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc("/agents", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleCreateAgent(w, r)
	})

	mux.HandleFunc("/agents/", func(w http.ResponseWriter, r *http.Request) {
		id, tail, ok := splitResourcePath(r.URL.Path, "/agents/")
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch tail {
		case "":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleGetAgent(w, r, id)
		case "setup-voice":
			switch r.Method {
			case http.MethodPost:
				h.HandleSetupVoice(w, r, id)
			case http.MethodPatch:
				h.HandleApplyIntent(w, r, id)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		id, tail, ok := splitResourcePath(r.URL.Path, "/sessions/")
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch tail {
		case "":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleGetSession(w, r, id)
		case "timeline":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleGetTimeline(w, r, id)
		case "weak-areas":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleListWeakAreas(w, r, id)
		case "chunks":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleAppendChunk(w, r, id)
		case "start", "pause", "resume", "finish", "process":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			switch tail {
			case "start":
				h.HandleStartSession(w, r, id)
			case "pause":
				h.HandlePauseSession(w, r, id)
			case "resume":
				h.HandleResumeSession(w, r, id)
			case "finish":
				h.HandleFinishSession(w, r, id)
			case "process":
				h.HandleProcessSession(w, r, id)
			}
		default:
			http.NotFound(w, r)
		}
	})

	return mux
}

// splitResourcePath extracts the resource id and the optional action suffix
// from paths like /sessions/{id}/start.
func splitResourcePath(path, prefix string) (id, tail string, ok bool) {
	rest := strings.TrimPrefix(strings.TrimSuffix(path, "/"), prefix)
	if rest == "" || strings.HasPrefix(rest, "/") {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		tail = parts[1]
	}
	if strings.Contains(tail, "/") {
		return "", "", false
	}
	return id, tail, true
}
