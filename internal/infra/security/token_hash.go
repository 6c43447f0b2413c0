package security

import "golang.org/x/crypto/bcrypt"

// BcryptHasher hashes session tokens before they are stored on the user.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(token string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(token), h.cost())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, token string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
}

func (h BcryptHasher) cost() int {
	if h.Cost >= bcrypt.MinCost {
		return h.Cost
	}
	return bcrypt.DefaultCost
}
