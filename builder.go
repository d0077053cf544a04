package nativeusers

import (
	"github.com/redis/go-redis/v9"

	"github.com/nativeauth/nativeusers/hash"
	"github.com/nativeauth/nativeusers/storedoc"
	"github.com/nativeauth/nativeusers/storedoc/redisdoc"
)

// Builder assembles a Store from its collaborators using functional
// options, the same shape the teacher's root Builder uses to assemble
// its engine. A Builder is single-use: Build consumes it.
type Builder struct {
	config Config
	client storedoc.DocumentStore
	hasher Hasher
	purger RealmCachePurger
	logger Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig and a standard Logger.
// A DocumentStore and a RealmCachePurger must still be supplied before
// Build succeeds; the Hasher defaults to BCrypt.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: NewStdLogger(),
	}
}

// WithConfig overrides the default Config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithDocumentStore sets the backing store directly.
func (b *Builder) WithDocumentStore(client storedoc.DocumentStore) *Builder {
	b.client = client
	return b
}

// WithRedis is a convenience for the common case: it wraps client in the
// redisdoc adapter and installs it as the backing DocumentStore.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.client = redisdoc.New(client)
	return b
}

// WithHasher overrides the default password hasher. If never called,
// Build installs a BcryptHasher using hash.DefaultConfig().
func (b *Builder) WithHasher(hasher Hasher) *Builder {
	b.hasher = hasher
	return b
}

// WithPurger sets the realm-cache purge collaborator.
func (b *Builder) WithPurger(purger RealmCachePurger) *Builder {
	b.purger = purger
	return b
}

// WithLogger overrides the default standard-library-backed Logger.
func (b *Builder) WithLogger(logger Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the accumulated configuration and collaborators and
// returns a Store in StateInitialized. It returns ErrAlreadyBuilt if
// called more than once on the same Builder, and ErrMissingDependency if
// no DocumentStore or RealmCachePurger was ever supplied.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.client == nil || b.purger == nil {
		return nil, ErrMissingDependency
	}

	hasher := b.hasher
	if hasher == nil {
		bcryptHasher, err := hash.New(hash.DefaultConfig())
		if err != nil {
			return nil, err
		}
		hasher = bcryptHasher
	}

	logger := b.logger
	if logger == nil {
		logger = NewStdLogger()
	}

	return newStore(b.config, b.client, hasher, b.purger, logger), nil
}
