package elgamal

import "errors"

// ErrDecryptionFailure is returned by Decrypt when the discrete log of the
// recovered plaintext point could not be found within the requested
// window, and by Refresh when the secret key does not own the ciphertext
// being refreshed.
var ErrDecryptionFailure = errors.New("elgamal: decryption failure")
