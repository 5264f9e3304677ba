package protocol

// Login authenticates a session with username/password credentials. It must
// be the first message on a fresh connection.
type Login struct {
	Type     MessageType `json:"type"`
	Username string      `json:"username"`
	Password string      `json:"password"`
}

// NewLogin builds a login message.
func NewLogin(username, password string) *Login {
	return &Login{Type: TypeLogin, Username: username, Password: password}
}

func (*Login) Kind() MessageType { return TypeLogin }

// RefreshToken exchanges a refresh token for a fresh token pair.
type RefreshToken struct {
	Type         MessageType `json:"type"`
	RefreshToken string      `json:"refresh_token"`
}

// NewRefreshToken builds a refresh_token message.
func NewRefreshToken(token string) *RefreshToken {
	return &RefreshToken{Type: TypeRefreshToken, RefreshToken: token}
}

func (*RefreshToken) Kind() MessageType { return TypeRefreshToken }

// ListDir requests a directory listing.
type ListDir struct {
	Type MessageType `json:"type"`
	Path string      `json:"path"`
}

// NewListDir builds a list_dir message.
func NewListDir(path string) *ListDir {
	return &ListDir{Type: TypeListDir, Path: path}
}

func (*ListDir) Kind() MessageType { return TypeListDir }

// Download requests a file's content. The server replies with FileContent.
type Download struct {
	Type MessageType `json:"type"`
	Path string      `json:"path"`
}

// NewDownload builds a download message.
func NewDownload(path string) *Download {
	return &Download{Type: TypeDownload, Path: path}
}

func (*Download) Kind() MessageType { return TypeDownload }

// Upload writes file content at a path, overwriting any existing file.
type Upload struct {
	Type    MessageType `json:"type"`
	Path    string      `json:"path"`
	Content []byte      `json:"content"`
}

// NewUpload builds an upload message.
func NewUpload(path string, content []byte) *Upload {
	return &Upload{Type: TypeUpload, Path: path, Content: content}
}

func (*Upload) Kind() MessageType { return TypeUpload }

// Delete removes a file or directory.
type Delete struct {
	Type MessageType `json:"type"`
	Path string      `json:"path"`
}

// NewDelete builds a delete message.
func NewDelete(path string) *Delete {
	return &Delete{Type: TypeDelete, Path: path}
}

func (*Delete) Kind() MessageType { return TypeDelete }

// Rename moves a file or directory.
type Rename struct {
	Type MessageType `json:"type"`
	From string      `json:"from"`
	To   string      `json:"to"`
}

// NewRename builds a rename message.
func NewRename(from, to string) *Rename {
	return &Rename{Type: TypeRename, From: from, To: to}
}

func (*Rename) Kind() MessageType { return TypeRename }

// Mkdir creates a directory.
type Mkdir struct {
	Type MessageType `json:"type"`
	Path string      `json:"path"`
}

// NewMkdir builds a mkdir message.
func NewMkdir(path string) *Mkdir {
	return &Mkdir{Type: TypeMkdir, Path: path}
}

func (*Mkdir) Kind() MessageType { return TypeMkdir }

// ClientCapabilities is a client's self-reported resource profile, used by
// the offload policy to decide which sessions can take on heavy work.
type ClientCapabilities struct {
	CPUCores              uint32 `json:"cpu_cores"`
	HasGPU                bool   `json:"has_gpu"`
	RAMFreeMB             uint64 `json:"ram_free_mb"`
	OnACPower             bool   `json:"on_ac_power"`
	CanGenerateThumbnails bool   `json:"can_generate_thumbnails"`
	CanSearchLocally      bool   `json:"can_search_locally"`
	CanCompress           bool   `json:"can_compress"`
}

// Capabilities reports client capabilities. The server records them without
// replying.
type Capabilities struct {
	Type MessageType `json:"type"`
	ClientCapabilities
}

// NewCapabilities builds a capabilities message.
func NewCapabilities(caps ClientCapabilities) *Capabilities {
	return &Capabilities{Type: TypeCapabilities, ClientCapabilities: caps}
}

func (*Capabilities) Kind() MessageType { return TypeCapabilities }

// OffloadResult carries the outcome of a previously issued OffloadRequest
// back to the server.
type OffloadResult struct {
	Type   MessageType `json:"type"`
	TaskID string      `json:"task_id"`
	Result []byte      `json:"result"`
}

// NewOffloadResult builds an offload_result message.
func NewOffloadResult(taskID string, result []byte) *OffloadResult {
	return &OffloadResult{Type: TypeOffloadResult, TaskID: taskID, Result: result}
}

func (*OffloadResult) Kind() MessageType { return TypeOffloadResult }

// Ping is a keepalive probe. The server replies with Pong.
type Ping struct {
	Type MessageType `json:"type"`
}

// NewPing builds a ping message.
func NewPing() *Ping {
	return &Ping{Type: TypePing}
}

func (*Ping) Kind() MessageType { return TypePing }
