package protocol

// AuthSuccess carries a freshly issued token pair after a successful login
// or refresh.
type AuthSuccess struct {
	Type         MessageType `json:"type"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

// NewAuthSuccess builds an auth_success message. expiresIn is the access
// token lifetime in seconds.
func NewAuthSuccess(accessToken, refreshToken string, expiresIn int64) *AuthSuccess {
	return &AuthSuccess{
		Type:         TypeAuthSuccess,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}
}

func (*AuthSuccess) Kind() MessageType { return TypeAuthSuccess }

// AuthError reports a failed login or refresh.
type AuthError struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewAuthError builds an auth_error message.
func NewAuthError(message string) *AuthError {
	return &AuthError{Type: TypeAuthError, Message: message}
}

func (*AuthError) Kind() MessageType { return TypeAuthError }

// FileEntry is a single entry in a directory listing. Modified is Unix
// seconds; MimeType is null when the backend reports none.
type FileEntry struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	IsDir    bool    `json:"is_dir"`
	Size     uint64  `json:"size"`
	Modified int64   `json:"modified"`
	MimeType *string `json:"mime_type"`
}

// DirListing is the reply to ListDir.
type DirListing struct {
	Type    MessageType `json:"type"`
	Path    string      `json:"path"`
	Entries []FileEntry `json:"entries"`
}

// NewDirListing builds a dir_listing message. A nil entries slice is
// normalized so the wire always carries an array.
func NewDirListing(path string, entries []FileEntry) *DirListing {
	if entries == nil {
		entries = []FileEntry{}
	}
	return &DirListing{Type: TypeDirListing, Path: path, Entries: entries}
}

func (*DirListing) Kind() MessageType { return TypeDirListing }

// FileContent is the reply to Download. MimeType is null when detection
// yielded nothing.
type FileContent struct {
	Type     MessageType `json:"type"`
	Path     string      `json:"path"`
	Content  []byte      `json:"content"`
	MimeType *string     `json:"mime_type"`
}

// NewFileContent builds a file_content message.
func NewFileContent(path string, content []byte, mimeType *string) *FileContent {
	return &FileContent{Type: TypeFileContent, Path: path, Content: content, MimeType: mimeType}
}

func (*FileContent) Kind() MessageType { return TypeFileContent }

// OpSuccess reports a completed mutating operation.
type OpSuccess struct {
	Type MessageType `json:"type"`
	Op   string      `json:"op"`
	Path string      `json:"path"`
}

// NewOpSuccess builds an op_success message.
func NewOpSuccess(op, path string) *OpSuccess {
	return &OpSuccess{Type: TypeOpSuccess, Op: op, Path: path}
}

func (*OpSuccess) Kind() MessageType { return TypeOpSuccess }

// OpError reports a failed operation. The session stays open.
type OpError struct {
	Type    MessageType `json:"type"`
	Op      string      `json:"op"`
	Path    string      `json:"path"`
	Message string      `json:"message"`
}

// NewOpError builds an op_error message.
func NewOpError(op, path, message string) *OpError {
	return &OpError{Type: TypeOpError, Op: op, Path: path, Message: message}
}

func (*OpError) Kind() MessageType { return TypeOpError }

// LoadHint is an advisory signal derived from server load. Clients decide
// how to act on hints; the server never enforces them.
type LoadHint string

const (
	// HintThrottleTransfers asks clients to reduce concurrent transfers.
	HintThrottleTransfers LoadHint = "throttle_transfers"
	// HintGenerateThumbnailsLocally asks clients to render their own thumbnails.
	HintGenerateThumbnailsLocally LoadHint = "generate_thumbnails_locally"
	// HintSearchLocally asks clients to run content search themselves.
	HintSearchLocally LoadHint = "search_locally"
	// HintRecovering signals the server is under pressure and may be slow.
	HintRecovering LoadHint = "recovering"
)

// Load is the periodic server load report broadcast to every session.
type Load struct {
	Type       MessageType `json:"type"`
	CPUPercent float64     `json:"cpu_percent"`
	RAMFreeMB  uint64      `json:"ram_free_mb"`
	IOBusy     bool        `json:"io_busy"`
	Hints      []LoadHint  `json:"hints"`
}

// NewLoad builds a load message. A nil hints slice is normalized so the wire
// always carries an array.
func NewLoad(cpuPercent float64, ramFreeMB uint64, ioBusy bool, hints []LoadHint) *Load {
	if hints == nil {
		hints = []LoadHint{}
	}
	return &Load{
		Type:       TypeLoad,
		CPUPercent: cpuPercent,
		RAMFreeMB:  ramFreeMB,
		IOBusy:     ioBusy,
		Hints:      hints,
	}
}

func (*Load) Kind() MessageType { return TypeLoad }

// TaskKind discriminates offload task payloads.
type TaskKind string

const (
	TaskThumbnail TaskKind = "thumbnail"
	TaskSearch    TaskKind = "search"
)

// OffloadTask describes work the server wants a capable client to perform.
// The task_type tag selects which fields are meaningful.
type OffloadTask struct {
	Kind   TaskKind `json:"task_type"`
	Path   string   `json:"path,omitempty"`
	Source []byte   `json:"source,omitempty"`
	Width  uint32   `json:"width,omitempty"`
	Height uint32   `json:"height,omitempty"`
	Query  string   `json:"query,omitempty"`
	Paths  []string `json:"paths,omitempty"`
}

// NewThumbnailTask builds a thumbnail generation task.
func NewThumbnailTask(path string, source []byte, width, height uint32) OffloadTask {
	return OffloadTask{Kind: TaskThumbnail, Path: path, Source: source, Width: width, Height: height}
}

// NewSearchTask builds a content search task over the given paths.
func NewSearchTask(query string, paths []string) OffloadTask {
	return OffloadTask{Kind: TaskSearch, Query: query, Paths: paths}
}

// OffloadRequest asks a client to perform a task on the server's behalf.
type OffloadRequest struct {
	Type   MessageType `json:"type"`
	TaskID string      `json:"task_id"`
	Task   OffloadTask `json:"task"`
}

// NewOffloadRequest builds an offload_request message.
func NewOffloadRequest(taskID string, task OffloadTask) *OffloadRequest {
	return &OffloadRequest{Type: TypeOffloadRequest, TaskID: taskID, Task: task}
}

func (*OffloadRequest) Kind() MessageType { return TypeOffloadRequest }

// FsEventKind discriminates filesystem event variants.
type FsEventKind string

const (
	FsCreated  FsEventKind = "created"
	FsModified FsEventKind = "modified"
	FsDeleted  FsEventKind = "deleted"
	FsRenamed  FsEventKind = "renamed"
)

// FsEvent is an advisory notice that a path changed. Delivery is lossy;
// clients re-list directories when they need canonical state.
type FsEvent struct {
	Type  MessageType `json:"type"`
	Event FsEventKind `json:"event"`
	Path  string      `json:"path,omitempty"`
	IsDir *bool       `json:"is_dir,omitempty"`
	From  string      `json:"from,omitempty"`
	To    string      `json:"to,omitempty"`
}

// NewFsCreated builds a created event.
func NewFsCreated(path string, isDir bool) *FsEvent {
	return &FsEvent{Type: TypeFsEvent, Event: FsCreated, Path: path, IsDir: &isDir}
}

// NewFsModified builds a modified event.
func NewFsModified(path string) *FsEvent {
	return &FsEvent{Type: TypeFsEvent, Event: FsModified, Path: path}
}

// NewFsDeleted builds a deleted event.
func NewFsDeleted(path string) *FsEvent {
	return &FsEvent{Type: TypeFsEvent, Event: FsDeleted, Path: path}
}

// NewFsRenamed builds a renamed event.
func NewFsRenamed(from, to string) *FsEvent {
	return &FsEvent{Type: TypeFsEvent, Event: FsRenamed, From: from, To: to}
}

func (*FsEvent) Kind() MessageType { return TypeFsEvent }

// Pong answers a Ping.
type Pong struct {
	Type MessageType `json:"type"`
}

// NewPong builds a pong message.
func NewPong() *Pong {
	return &Pong{Type: TypePong}
}

func (*Pong) Kind() MessageType { return TypePong }

// ErrorMessage reports a generic protocol-level error.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewError builds an error message.
func NewError(message string) *ErrorMessage {
	return &ErrorMessage{Type: TypeError, Message: message}
}

func (*ErrorMessage) Kind() MessageType { return TypeError }
