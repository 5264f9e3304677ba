package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientMessages(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, msg Message)
	}{
		{
			name: "login",
			raw:  `{"type":"login","username":"alice","password":"secret"}`,
			check: func(t *testing.T, msg Message) {
				login, ok := msg.(*Login)
				require.True(t, ok)
				assert.Equal(t, "alice", login.Username)
				assert.Equal(t, "secret", login.Password)
			},
		},
		{
			name: "list_dir",
			raw:  `{"type":"list_dir","path":"/home"}`,
			check: func(t *testing.T, msg Message) {
				ld, ok := msg.(*ListDir)
				require.True(t, ok)
				assert.Equal(t, "/home", ld.Path)
			},
		},
		{
			name: "upload decodes base64 content",
			raw:  `{"type":"upload","path":"/a.txt","content":"aGVsbG8="}`,
			check: func(t *testing.T, msg Message) {
				up, ok := msg.(*Upload)
				require.True(t, ok)
				assert.Equal(t, "/a.txt", up.Path)
				assert.Equal(t, []byte("hello"), up.Content)
			},
		},
		{
			name: "rename",
			raw:  `{"type":"rename","from":"/a","to":"/b"}`,
			check: func(t *testing.T, msg Message) {
				rn, ok := msg.(*Rename)
				require.True(t, ok)
				assert.Equal(t, "/a", rn.From)
				assert.Equal(t, "/b", rn.To)
			},
		},
		{
			name: "capabilities fields are flat",
			raw:  `{"type":"capabilities","cpu_cores":8,"has_gpu":true,"ram_free_mb":2048,"on_ac_power":true,"can_generate_thumbnails":true,"can_search_locally":false,"can_compress":true}`,
			check: func(t *testing.T, msg Message) {
				caps, ok := msg.(*Capabilities)
				require.True(t, ok)
				assert.Equal(t, uint32(8), caps.CPUCores)
				assert.True(t, caps.HasGPU)
				assert.Equal(t, uint64(2048), caps.RAMFreeMB)
				assert.False(t, caps.CanSearchLocally)
				assert.True(t, caps.CanCompress)
			},
		},
		{
			name: "offload_result",
			raw:  `{"type":"offload_result","task_id":"t1","result":"AQID"}`,
			check: func(t *testing.T, msg Message) {
				res, ok := msg.(*OffloadResult)
				require.True(t, ok)
				assert.Equal(t, "t1", res.TaskID)
				assert.Equal(t, []byte{1, 2, 3}, res.Result)
			},
		},
		{
			name: "ping",
			raw:  `{"type":"ping"}`,
			check: func(t *testing.T, msg Message) {
				_, ok := msg.(*Ping)
				require.True(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			tt.check(t, msg)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("UnknownType", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":"teleport"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := Decode([]byte(`{not json`))
		require.Error(t, err)
	})

	t.Run("MissingType", func(t *testing.T) {
		_, err := Decode([]byte(`{"path":"/x"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	messages := []Message{
		NewLogin("alice", "secret"),
		NewRefreshToken("rt"),
		NewListDir("/"),
		NewDownload("/a.txt"),
		NewUpload("/a.txt", []byte("payload")),
		NewDelete("/a.txt"),
		NewRename("/a", "/b"),
		NewMkdir("/dir"),
		NewCapabilities(ClientCapabilities{CPUCores: 4, OnACPower: true}),
		NewOffloadResult("t1", []byte{9}),
		NewPing(),
		NewAuthSuccess("at", "rt", 900),
		NewAuthError("nope"),
		NewDirListing("/", []FileEntry{{Name: "a", Path: "/a", Size: 1}}),
		NewFileContent("/a", []byte("x"), nil),
		NewOpSuccess("mkdir", "/dir"),
		NewOpError("download", "/a", "boom"),
		NewLoad(42.5, 512, false, []LoadHint{HintThrottleTransfers}),
		NewOffloadRequest("t2", NewSearchTask("needle", []string{"/docs"})),
		NewFsCreated("/x", true),
		NewPong(),
		NewError("oops"),
	}

	for _, original := range messages {
		t.Run(string(original.Kind()), func(t *testing.T) {
			data, err := Encode(original)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, original.Kind(), decoded.Kind())
			assert.Equal(t, original, decoded)
		})
	}
}

func TestUploadContentEncodesAsBase64(t *testing.T) {
	data, err := Encode(NewUpload("/a", []byte("hello")))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":"aGVsbG8="`)
}

func TestFsEventShapes(t *testing.T) {
	t.Run("CreatedCarriesIsDirEvenWhenFalse", func(t *testing.T) {
		data, err := Encode(NewFsCreated("/f.txt", false))
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "fs_event", raw["type"])
		assert.Equal(t, "created", raw["event"])
		assert.Equal(t, "/f.txt", raw["path"])
		assert.Equal(t, false, raw["is_dir"])
	})

	t.Run("RenamedCarriesFromToWithoutPath", func(t *testing.T) {
		data, err := Encode(NewFsRenamed("/a", "/b"))
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "renamed", raw["event"])
		assert.Equal(t, "/a", raw["from"])
		assert.Equal(t, "/b", raw["to"])
		assert.NotContains(t, raw, "path")
		assert.NotContains(t, raw, "is_dir")
	})

	t.Run("DeletedOmitsIsDir", func(t *testing.T) {
		data, err := Encode(NewFsDeleted("/a"))
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "deleted", raw["event"])
		assert.Equal(t, "/a", raw["path"])
		assert.NotContains(t, raw, "is_dir")
	})
}

func TestLoadMessageShape(t *testing.T) {
	t.Run("NilHintsSerializeAsEmptyArray", func(t *testing.T) {
		data, err := Encode(NewLoad(10, 900, false, nil))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"hints":[]`)
	})

	t.Run("HintsSerializeAsSnakeCase", func(t *testing.T) {
		data, err := Encode(NewLoad(96, 40, true, []LoadHint{
			HintThrottleTransfers,
			HintGenerateThumbnailsLocally,
			HintSearchLocally,
			HintRecovering,
		}))
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, []any{
			"throttle_transfers",
			"generate_thumbnails_locally",
			"search_locally",
			"recovering",
		}, raw["hints"])
		assert.Equal(t, true, raw["io_busy"])
	})
}

func TestFileEntryMimeTypeNullable(t *testing.T) {
	data, err := Encode(NewDirListing("/", []FileEntry{
		{Name: "a", Path: "/a", IsDir: false, Size: 1, Modified: 0, MimeType: nil},
	}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mime_type":null`)
}

func TestOffloadTaskTagging(t *testing.T) {
	t.Run("Thumbnail", func(t *testing.T) {
		task := NewThumbnailTask("/img.jpg", []byte{0xFF}, 320, 240)
		data, err := Encode(NewOffloadRequest("t1", task))
		require.NoError(t, err)

		var raw struct {
			Task map[string]any `json:"task"`
		}
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "thumbnail", raw.Task["task_type"])
		assert.Equal(t, "/img.jpg", raw.Task["path"])
		assert.Equal(t, float64(320), raw.Task["width"])
		assert.NotContains(t, raw.Task, "query")
	})

	t.Run("Search", func(t *testing.T) {
		task := NewSearchTask("term", []string{"/docs", "/notes"})
		data, err := Encode(NewOffloadRequest("t2", task))
		require.NoError(t, err)

		var raw struct {
			Task map[string]any `json:"task"`
		}
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "search", raw.Task["task_type"])
		assert.Equal(t, "term", raw.Task["query"])
		assert.NotContains(t, raw.Task, "path")
	})
}
