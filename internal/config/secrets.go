// internal/config/secrets.go
//
// Vault reference resolution for the merged config tree.
//
// Context
// -------
// Operators write secret values as `vault:<mount/path>#<key>` in YAML or env
// overlays.  Before unmarshalling, the loader walks every string leaf and
// swaps each reference for the real secret.  When no reference is present
// the Vault client is never constructed, so local development needs no
// Vault at all.

package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/solarsaarthi/platform/internal/vault"
)

const vaultPrefix = "vault:"

// secretTTL caches resolved secrets inside the Vault client so a Reload()
// shortly after boot does not hammer the server.
const secretTTL = 5 * time.Minute

// resolveVaultRefs replaces every `vault:` string leaf in k with the secret
// it names.  Returns the first resolution error.
func resolveVaultRefs(k *koanf.Koanf) error {
	var refs []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vaultPrefix) {
			refs = append(refs, key)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	ctx := context.Background()
	cli, err := vault.New(ctx, zap.S().Infof)
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}

	for _, key := range refs {
		ref := strings.TrimPrefix(k.String(key), vaultPrefix)
		path, field, ok := strings.Cut(ref, "#")
		if !ok {
			return fmt.Errorf("config %s: malformed vault reference %q (want path#key)", key, ref)
		}

		secret, err := cli.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		zap.S().Debugw("vault reference resolved", "key", key, "path", path)
	}
	return nil
}
