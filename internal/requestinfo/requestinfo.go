// internal/requestinfo/requestinfo.go
//
// Lightweight types and helpers that collect per-request metadata
// (user-agent fingerprint, IP + geolocation, and timestamp).  The auth
// component logs these on signup, login, and callback events so account
// activity carries an audit trail.  The structs are inert – no database
// handles, no large buffers – so they are safe to log or JSON-encode.
//
// Dependencies
// • github.com/avct/uasurfer          (UA parsing)
// • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)

package requestinfo

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw     string // Entire User-Agent header
	Browser string // "Chrome", "Firefox", "Safari", etc.
	Version string // "124.0.6367"
	OS      string // "macOS", "Windows", "Android", "iOS", etc.
	Device  string // "Desktop", "Phone", "Tablet", "TV", ...
	IsBot   bool   // True if UA matches crawler signatures
}

// Geo holds IP-based geolocation hints.  Best-effort; fields may be empty
// when the database has no match or geolocation is disabled.
type Geo struct {
	IP         net.IP // Original client address (not X-Forwarded-For chain)
	CountryISO string // "US", "IN", "FR", ...
	City       string // "Ahmedabad", "Paris", ...
}

// RequestInfo is stored in the request context by the Enrich middleware.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is a singleton MaxMind handle.  Safe for concurrent reads,
// which is all we ever perform.  nil when geolocation is disabled.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database at startup.  Call it from main()
// only when a database path is configured; without it lookups return the
// bare IP.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Raw:     uaHeader,
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: trimVersion(u.Browser.Version),
		OS:      osName,
		Device:  deviceTypeToString(u.DeviceType),
		IsBot:   u.IsBot(),
	}
}

// trimVersion builds "major.minor.patch" and removes trailing ".0".
func trimVersion(v uasurfer.Version) string {
	out := strings.Join([]string{
		strconv.Itoa(v.Major),
		strconv.Itoa(v.Minor),
		strconv.Itoa(v.Patch),
	}, ".")
	out = strings.TrimSuffix(strings.TrimSuffix(out, ".0"), ".0")
	if out == "" {
		return "0"
	}
	return out
}

// deviceTypeToString maps uasurfer.DeviceType to a user-friendly string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
