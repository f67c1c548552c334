package signing

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
)

// SignJSON signs obj with key on behalf of serverName and returns a copy
// carrying the signature under signatures[serverName][key.ID()]. The
// signature covers the canonical encoding of obj with the "signatures" and
// "unsigned" members removed, so previously attached signatures from other
// servers survive and do not affect the signed bytes.
func SignJSON(obj map[string]any, serverName string, key *Key) (map[string]any, error) {
	if key == nil {
		return nil, errors.New("signing: key is required")
	}
	if serverName == "" {
		return nil, errors.New("signing: server name is required")
	}

	unsigned := obj["unsigned"]
	existing, _ := obj["signatures"].(map[string]any)

	stripped := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == "signatures" || k == "unsigned" {
			continue
		}
		stripped[k] = v
	}

	message, err := CanonicalJSON(stripped)
	if err != nil {
		return nil, err
	}

	sig := ed25519.Sign(key.Private, message)

	signatures := make(map[string]any, len(existing)+1)
	for name, sigs := range existing {
		signatures[name] = sigs
	}

	byKey, _ := signatures[serverName].(map[string]any)
	if byKey == nil {
		byKey = make(map[string]any, 1)
	}
	byKey[key.ID()] = base64.RawStdEncoding.EncodeToString(sig)
	signatures[serverName] = byKey

	signed := make(map[string]any, len(obj)+1)
	for k, v := range stripped {
		signed[k] = v
	}
	signed["signatures"] = signatures
	if unsigned != nil {
		signed["unsigned"] = unsigned
	}

	return signed, nil
}

// VerifyJSON checks that obj carries a valid signature from serverName under
// keyID, verifiable with pub. Used by tests and by operators debugging
// federation issues; remote servers run the equivalent check.
func VerifyJSON(obj map[string]any, serverName, keyID string, pub ed25519.PublicKey) error {
	signatures, _ := obj["signatures"].(map[string]any)
	byKey, _ := signatures[serverName].(map[string]any)
	sigB64, _ := byKey[keyID].(string)
	if sigB64 == "" {
		return fmt.Errorf("signing: no signature from %s with key %s", serverName, keyID)
	}

	sig, err := base64.RawStdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("signing: decode signature: %w", err)
	}

	stripped := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == "signatures" || k == "unsigned" {
			continue
		}
		stripped[k] = v
	}

	message, err := CanonicalJSON(stripped)
	if err != nil {
		return err
	}

	if !ed25519.Verify(pub, message, sig) {
		return errors.New("signing: signature verification failed")
	}
	return nil
}
