package api

import (
	"net/http"
	"sort"

	"github.com/sungwon/message-gateway/internal/provider"
)

// providerInfo describes one registered adapter.
type providerInfo struct {
	Name             string `json:"name"`
	SupportsMMS      bool   `json:"supports_mms"`
	SupportsWhatsApp bool   `json:"supports_whatsapp"`
	SupportsRCS      bool   `json:"supports_rcs"`
	Healthy          bool   `json:"healthy"`
}

// ListProvidersHandler handles GET /v1/providers.
func ListProvidersHandler(registry *provider.Registry, checker *provider.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adapters := registry.All()

		infos := make([]providerInfo, 0, len(adapters))
		for _, a := range adapters {
			healthy := true
			if checker != nil {
				healthy = checker.IsHealthy(a.Name())
			}
			infos = append(infos, providerInfo{
				Name:             a.Name(),
				SupportsMMS:      a.SupportsMMS(),
				SupportsWhatsApp: a.SupportsWhatsApp(),
				SupportsRCS:      a.SupportsRCS(),
				Healthy:          healthy,
			})
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

		respondJSON(w, http.StatusOK, map[string]any{"providers": infos})
	}
}
