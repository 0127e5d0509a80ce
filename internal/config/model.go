// internal/config/model.go
//
// Typed configuration model for the SolarSaarthi platform.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `SAARTHI_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs–only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`–Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.  BaseURL is the public origin used when
// building provider redirect targets such as <BaseURL>/auth/callback.
type HTTP struct {
	ListenAddr  string `koanf:"listen_addr"  validate:"required,hostname_port"`
	MetricsAddr string `koanf:"metrics_addr" validate:"required,hostname_port"`
	BaseURL     string `koanf:"base_url"     validate:"required,url"`
	ForceHTTPS  bool   `koanf:"force_https"`
}

//
// Auth-provider section
//

// Auth describes the hosted authentication service.  JWTSecret verifies the
// access tokens the provider mints (HS256); it normally arrives via Vault.
type Auth struct {
	URL       string `koanf:"url"        validate:"required,url"`
	AnonKey   string `koanf:"anon_key"   validate:"required"`
	JWTSecret string `koanf:"jwt_secret" validate:"required"`
}

//
// Profile-backend section
//

// Backend is the persistence endpoint the hand-off client POSTs drafts to.
// It points at this same binary in the single-process deployment, but stays
// an HTTP boundary so the two halves can be split again.
type Backend struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

//
// Database section
//

// Database holds the DSN template and its secret.  The template stays in
// YAML so operators can tweak host, port, or flags without touching Vault;
// the password is injected at runtime.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// Redis section
//

// Redis configures the pending hand-off store.  DraftTTLHours bounds how
// long an unconfirmed signup draft may wait for its confirmation callback.
type Redis struct {
	Addr          string `koanf:"addr" validate:"required,hostname_port"`
	Password      string `koanf:"password"`
	DB            int    `koanf:"db"`
	DraftTTLHours int    `koanf:"draft_ttl_hours" validate:"gte=0"`
}

//
// Assistant section
//

// Assistant configures the generative-text proxy used by the chat view.
type Assistant struct {
	Endpoint string `koanf:"endpoint" validate:"required,url"`
	APIKey   string `koanf:"api_key"  validate:"required"`
}

//
// GeoIP section (optional)
//

// GeoIP enables MaxMind lookups in the request-info middleware when DBPath
// is set.  Empty path disables geolocation without disabling UA parsing.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime–never set in YAML or env.  The loader
// discovers `Root` (repo root or SAARTHI_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // SAARTHI_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Auth      Auth      `koanf:"auth"`
	Backend   Backend   `koanf:"backend"`
	Database  Database  `koanf:"database"`
	Redis     Redis     `koanf:"redis"`
	Assistant Assistant `koanf:"assistant"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Paths     Paths     `koanf:"-"` // not loaded from config files
}
