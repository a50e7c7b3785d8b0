package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Resources    *ResourceHandler
	Schedules    *ScheduleHandler
	Availability *AvailabilityHandler
	EventStream  http.Handler
	Health       http.HandlerFunc
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Resources != nil {
		mux.HandleFunc("/resources/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/resources/")
			kind, id, extra := splitTwo(rest)
			if kind == "" || extra != "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceRef(r.Context(), kind, id))

			if id == "" {
				switch r.Method {
				case http.MethodGet:
					cfg.Resources.List(w, r)
				case http.MethodPost:
					cfg.Resources.Create(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Resources.Get(w, r)
			case http.MethodPut:
				cfg.Resources.Update(w, r)
			case http.MethodDelete:
				cfg.Resources.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})

		mux.HandleFunc("/devices/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/devices/")
			id, action, extra := splitTwo(rest)
			if id == "" || action != "status" || extra != "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Resources.SetDeviceStatus(w, r, id)
		})
	}

	if cfg.Schedules != nil {
		mux.HandleFunc("/schedules", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Schedules.List(w, r)
			case http.MethodPost:
				cfg.Schedules.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/schedules/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/schedules/")
			switch id {
			case "":
				http.NotFound(w, r)
				return
			case "conflicts":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Schedules.Conflicts(w, r)
				return
			case "suggest":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Schedules.Suggest(w, r)
				return
			}

			r = r.WithContext(ContextWithScheduleID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Schedules.Get(w, r)
			case http.MethodPut:
				cfg.Schedules.Update(w, r)
			case http.MethodDelete:
				cfg.Schedules.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Availability != nil {
		mux.HandleFunc("/availability/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/availability/")
			kind, id, extra := splitTwo(rest)
			if kind == "" || id == "" || extra != "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceRef(r.Context(), kind, id))
			switch r.Method {
			case http.MethodGet:
				cfg.Availability.Windows(w, r)
			case http.MethodPut:
				cfg.Availability.SetWindows(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
		mux.HandleFunc("/available/", func(w http.ResponseWriter, r *http.Request) {
			kind, id, extra := splitTwo(strings.TrimPrefix(r.URL.Path, "/available/"))
			if kind == "" || id != "" || extra != "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithResourceRef(r.Context(), kind, ""))
			cfg.Availability.ListAvailable(w, r)
		})
	}

	if cfg.Health != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health(w, r)
		})
	}

	if cfg.EventStream != nil {
		mux.Handle("/ws", cfg.EventStream)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

// splitTwo breaks a trimmed path into at most two segments plus any trailing
// remainder.
func splitTwo(path string) (first, second, rest string) {
	parts := strings.SplitN(strings.Trim(path, "/"), "/", 3)
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		second = parts[1]
	}
	if len(parts) > 2 {
		rest = parts[2]
	}
	return first, second, rest
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
