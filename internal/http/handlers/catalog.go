package handlers

import (
	"net/http"
	"os"

	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
)

type catalogStatsResponse struct {
	Folders []string `json:"folders"`
	Videos  int      `json:"videos"`
	Total   int      `json:"total_folders"`
}

func (a *App) CatalogStats(w http.ResponseWriter, r *http.Request) {
	c := a.Catalog.Current()
	a.json(w, http.StatusOK, catalogStatsResponse{
		Folders: c.FolderNames(),
		Videos:  c.TotalVideoCount(),
		Total:   c.FolderCount(),
	})
}

func (a *App) CatalogReload(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(a.CatalogPath)
	if err != nil {
		a.Logger.Error().Err(err).Str("path", a.CatalogPath).Msg("catalog file unreadable")
		a.error(w, http.StatusInternalServerError, "internal", "catalog file unreadable")
		return
	}
	c, err := catalog.Load(data)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "catalog document is malformed")
		return
	}
	a.Catalog.Replace(c)
	a.Logger.Info().
		Int("videos", c.TotalVideoCount()).
		Int("folders", c.FolderCount()).
		Msg("catalog reloaded")
	a.json(w, http.StatusOK, catalogStatsResponse{
		Folders: c.FolderNames(),
		Videos:  c.TotalVideoCount(),
		Total:   c.FolderCount(),
	})
}
