package handler

import (
	"net/http"

	"github.com/ICMVRD/sb1-hdboxt/internal/config"
	"github.com/ICMVRD/sb1-hdboxt/internal/service"
)

type displayResponse struct {
	DisplayName   string `json:"display_name"`
	DisplayBranch string `json:"display_branch"`
	Title         string `json:"title"`
}

// settingsBody is both the GET response and the PUT request of
// /admin/settings.
type settingsBody struct {
	Display displayBody `json:"display"`
	Store   storeBody   `json:"store"`
}

type displayBody struct {
	Name   string `json:"name" validate:"required,max=200"`
	Branch string `json:"branch" validate:"max=200"`
}

type storeBody struct {
	Driver     string `json:"driver" validate:"required,oneof=postgres mongo firestore redis memory"`
	Collection string `json:"collection"`
	Postgres   struct {
		URL string `json:"url"`
	} `json:"postgres"`
	Mongo struct {
		URI      string `json:"uri"`
		Database string `json:"database"`
	} `json:"mongo"`
	Firestore struct {
		ProjectID       string `json:"project_id"`
		CredentialsFile string `json:"credentials_file"`
	} `json:"firestore"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db" validate:"gte=0"`
	} `json:"redis"`
}

// GetDisplay handles GET /settings/display, the public page header data.
func (s *Server) GetDisplay(w http.ResponseWriter, _ *http.Request) {
	d := s.settings.Display()
	writeJSON(w, http.StatusOK, displayResponse{
		DisplayName:   d.DisplayName,
		DisplayBranch: d.DisplayBranch,
		Title:         d.Title(),
	})
}

// GetSettings handles GET /admin/settings.
func (s *Server) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSettingsBody(s.settings.Get()))
}

// UpdateSettings handles PUT /admin/settings. The new store is connected
// before anything is saved; on failure the running settings stay in place
// and the response is 422 (invalid) or 503 (unreachable store).
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsBody
	if !s.decodeBody(w, r, &req) {
		return
	}

	updated, err := s.settings.Update(r.Context(), fromSettingsBody(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsBody(updated))
}

func toSettingsBody(ds service.DeveloperSettings) settingsBody {
	var b settingsBody
	b.Display = displayBody{Name: ds.Display.Name, Branch: ds.Display.Branch}
	b.Store.Driver = ds.Store.Driver
	b.Store.Collection = ds.Store.Collection
	b.Store.Postgres.URL = ds.Store.Postgres.URL
	b.Store.Mongo.URI = ds.Store.Mongo.URI
	b.Store.Mongo.Database = ds.Store.Mongo.Database
	b.Store.Firestore.ProjectID = ds.Store.Firestore.ProjectID
	b.Store.Firestore.CredentialsFile = ds.Store.Firestore.CredentialsFile
	b.Store.Redis.Addr = ds.Store.Redis.Addr
	b.Store.Redis.Password = ds.Store.Redis.Password
	b.Store.Redis.DB = ds.Store.Redis.DB
	return b
}

func fromSettingsBody(b settingsBody) service.DeveloperSettings {
	return service.DeveloperSettings{
		Display: config.DisplayConfig{Name: b.Display.Name, Branch: b.Display.Branch},
		Store: config.StoreConfig{
			Driver:     b.Store.Driver,
			Collection: b.Store.Collection,
			Postgres:   config.PostgresConfig{URL: b.Store.Postgres.URL},
			Mongo:      config.MongoConfig{URI: b.Store.Mongo.URI, Database: b.Store.Mongo.Database},
			Firestore: config.FirestoreConfig{
				ProjectID:       b.Store.Firestore.ProjectID,
				CredentialsFile: b.Store.Firestore.CredentialsFile,
			},
			Redis: config.RedisConfig{
				Addr:     b.Store.Redis.Addr,
				Password: b.Store.Redis.Password,
				DB:       b.Store.Redis.DB,
			},
		},
	}
}
