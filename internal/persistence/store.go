package persistence

import (
	"feedkeep/backend/internal/auth"
	"feedkeep/backend/internal/collection"
	"feedkeep/backend/internal/registry"
)

const (
	authFile        = "auth.yaml"
	collectionsFile = "collections.yaml"
	configFile      = "app_config.yaml"
)

// CollectionsDocument is the on-disk shape of collections.yaml.
type CollectionsDocument struct {
	Users map[registry.UserID]collection.UserCollection `yaml:"users"`
}

// AppConfigDocument is the on-disk shape of app_config.yaml: only the
// fields that must survive a restart without being re-derived from
// environment variables.
type AppConfigDocument struct {
	Hostname    string `yaml:"hostname"`
	Port        int    `yaml:"port"`
	RoutePrefix string `yaml:"route_prefix"`
	SessionKey  []byte `yaml:"session_key"`
}

// Store bundles the three persisted documents under one directory.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// SaveCollections writes the registry's current contents to
// collections.yaml.
func (s *Store) SaveCollections(reg *registry.Registry) error {
	doc := CollectionsDocument{Users: reg.Snapshot()}
	return SaveYAML(s.Dir, collectionsFile, doc)
}

// LoadCollections reads collections.yaml into a fresh registry. If the
// file does not exist, an empty registry is returned.
func (s *Store) LoadCollections() (*registry.Registry, error) {
	var doc CollectionsDocument
	if err := LoadOrDefault(s.Dir, collectionsFile, &doc); err != nil {
		return nil, err
	}
	return registry.FromSnapshot(doc.Users), nil
}

// SaveAuth writes store's credentials to auth.yaml.
func (s *Store) SaveAuth(store *auth.CredentialStore) error {
	return SaveYAML(s.Dir, authFile, store.Snapshot())
}

// LoadAuth reads auth.yaml into a fresh CredentialStore. If the file does
// not exist, an empty store is returned.
func (s *Store) LoadAuth(hasher auth.PasswordHasher) (*auth.CredentialStore, error) {
	var doc auth.CredentialsDocument
	if err := LoadOrDefault(s.Dir, authFile, &doc); err != nil {
		return nil, err
	}
	return auth.NewCredentialStoreFromSnapshot(doc, hasher), nil
}

// SaveAppConfig writes doc to app_config.yaml.
func (s *Store) SaveAppConfig(doc AppConfigDocument) error {
	return SaveYAML(s.Dir, configFile, doc)
}

// LoadAppConfig reads app_config.yaml. If the file does not exist, the
// zero-value AppConfigDocument is returned.
func (s *Store) LoadAppConfig() (AppConfigDocument, error) {
	var doc AppConfigDocument
	err := LoadOrDefault(s.Dir, configFile, &doc)
	return doc, err
}
