package secrets

import (
	"net/url"
	"os"
	"strings"
	"sync"
)

const (
	minSecretLen = 6
	// shortest path segment treated as an embedded API key
	minPathKeyLen = 16
)

var (
	once sync.Once
	mu   sync.RWMutex
	// values that must never reach logs or chat messages
	sensitive []string

	headerKeySet = map[string]struct{}{
		"x-api-key":           {},
		"authorization":       {},
		"proxy-authorization": {},
		"api-key":             {},
		"x-identity":          {},
	}

	envNameSensitivePatterns = []string{
		"API_KEY", "TOKEN", "SECRET", "PASSWORD", "ACCESS_KEY", "PRIVATE_KEY", "WEBHOOK",
	}
)

func initSensitiveEnvs() {
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name, val := parts[0], parts[1]
		up := strings.ToUpper(name)
		for _, pat := range envNameSensitivePatterns {
			if strings.Contains(up, pat) && len(val) >= minSecretLen {
				add(val)
				break
			}
		}
	}
}

func add(v string) {
	mu.Lock()
	defer mu.Unlock()
	for _, s := range sensitive {
		if s == v {
			return
		}
	}
	sensitive = append(sensitive, v)
}

// Register marks config-supplied values (bot token, API keys) as secret.
// Very short values are ignored to avoid mangling ordinary text.
func Register(values ...string) {
	once.Do(initSensitiveEnvs)
	for _, v := range values {
		if len(v) >= minSecretLen {
			add(v)
		}
	}
}

// RegisterURL marks the credential-bearing parts of an endpoint URL as
// secret: userinfo, query values and long path segments such as the key in
// https://host/v2/<key>.
func RegisterURL(raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	var vals []string
	if u.User != nil {
		vals = append(vals, u.User.Username())
		if pw, ok := u.User.Password(); ok {
			vals = append(vals, pw)
		}
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if len(seg) >= minPathKeyLen {
			vals = append(vals, seg)
		}
	}
	for _, vs := range u.Query() {
		vals = append(vals, vs...)
	}
	Register(vals...)
}

func RedactHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return h
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if _, ok := headerKeySet[strings.ToLower(k)]; ok {
			out[k] = "***"
			continue
		}
		out[k] = v
	}
	return out
}

func RedactString(s string) string {
	once.Do(initSensitiveEnvs)
	mu.RLock()
	defer mu.RUnlock()
	for _, val := range sensitive {
		s = strings.ReplaceAll(s, val, "[HIDDEN]")
	}
	return s
}
