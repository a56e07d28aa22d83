package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext secret with the configured cost. Two calls
// with identical input produce different verifier strings; both verify.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks a plaintext secret against a stored verifier. A
// malformed verifier is not an error, it simply does not verify.
func VerifyPassword(plain, verifier string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(plain)) == nil
}
