package session

// Operations covers interaction with the terminal multiplexer
type Operations interface {
	SessionType() Type
	IsAvailable() bool
	CreateSession(name, workingDir string, command []string) error
	HasSession(name string) (bool, error)
	ListSessions() ([]string, error)
	KillSession(name string) error
	AttachToSession(name string) error
	CapturePane(name string, lines int) (string, error)
}

// MetadataManager covers the deployment metadata attached to sessions
type MetadataManager interface {
	SaveSessionMetadata(metadata *Metadata) error
	LoadSessionMetadata(sessionName string) (*Metadata, error)
	DeleteSessionMetadata(sessionName string) error
	ListSessionMetadata() ([]*Metadata, error)
	UpdateSessionStatus(sessionName string, status Status) error
	SyncSessionStatus(sessionName string) (Status, error)
}

// Manager combines multiplexer operations with metadata management
type Manager interface {
	Operations
	MetadataManager
}

// Interface compliance checks
var (
	_ Manager    = (*SessionManager)(nil)
	_ Operations = (*FakeOperations)(nil)
)
