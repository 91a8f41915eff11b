package repository

// Repository defines the interface for the persisted session token
type Repository interface {
	Load() ([]byte, error)
	Save(token []byte) error
	Delete() error
	Path() string
}
