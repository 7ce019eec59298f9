package globals

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"github.com/mlx-launcher/mlx/permissions"
	"github.com/mlx-launcher/mlx/storage"
	"gopkg.in/go-playground/validator.v9"
)

/////////////////////////////////////////////////
/// Define global variables here

// Server encapsulates database, router, and auth
var Server *gz.Server

// APIVersion is route api version.
// See also routes and routers
var APIVersion = "1.0"

// GamesStorageDir is the directory where uploaded game archives are stored
// when the local bucket implementation is in use.
var GamesStorageDir string

// Validate references the global structs validator.
// See https://github.com/go-playground/validator.
// We use a single instance of validator, as it caches struct info
var Validate *validator.Validate

// FormDecoder holds a reference to the global Form Decoder.
// See https://github.com/go-playground/form.
// We use a single instance of Decoder, as it caches struct info
var FormDecoder *form.Decoder

// Permissions manages permissions for users, roles and resources.
var Permissions *permissions.Permissions

// Bucket is the archive storage backend used to keep and serve game
// archives. It is either disk-backed or S3-backed, chosen at startup.
var Bucket storage.Bucket

// AuthPrivateKey holds the PEM encoded RSA private key used to sign the
// tokens issued at login. The matching public key is handed to the gz
// server for route authentication.
var AuthPrivateKey []byte

// TokenExpirationDays is the lifetime of tokens issued at login.
var TokenExpirationDays = 30

// ElasticSearch is a pointer to the Elastic Search client, if configured.
// When nil, catalog search falls back to SQL.
var ElasticSearch *elasticsearch.Client

// QueryCache is used to store/cache results for common queries.
var QueryCache *memcache.Client
