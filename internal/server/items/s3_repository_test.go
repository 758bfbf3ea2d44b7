package items

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"gallerykeeper/internal/logging"
	sc "gallerykeeper/internal/server/config"
	"gallerykeeper/internal/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fake object store ----

type fakeObject struct {
	body string
	etag string
}

type fakeObjectAPI struct {
	objects map[string]fakeObject

	listErr       error
	getErr        error
	deleteErr     error
	headBucketErr error
	putFailKeys   map[string]error

	putKeys     []string
	putMeta     []map[string]string
	lastIfMatch string
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{objects: map[string]fakeObject{}}
}

func (f *fakeObjectAPI) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if in.MaxKeys != nil && int(*in.MaxKeys) < len(keys) {
		keys = keys[:*in.MaxKeys]
	}

	contents := make([]types.Object, 0, len(keys))
	for _, k := range keys {
		contents = append(contents, types.Object{Key: aws.String(k)})
	}

	return &s3.ListObjectsV2Output{
		Contents: contents,
		KeyCount: aws.Int32(int32(len(contents))),
	}, nil
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(obj.body))}, nil
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if err, ok := f.putFailKeys[key]; ok {
		return nil, err
	}

	var body []byte
	if in.Body != nil {
		var err error
		body, err = io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
	}

	f.objects[key] = fakeObject{body: string(body), etag: `"rev-1"`}
	f.putKeys = append(f.putKeys, key)
	f.putMeta = append(f.putMeta, in.Metadata)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ETag: aws.String(obj.etag)}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.lastIfMatch = aws.ToString(in.IfMatch)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	key := aws.ToString(in.Key)
	if _, ok := f.objects[key]; !ok {
		return nil, &types.NoSuchKey{}
	}
	delete(f.objects, key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeObjectAPI) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headBucketErr != nil {
		return nil, f.headBucketErr
	}
	return &s3.HeadBucketOutput{}, nil
}

// ---- helpers ----

func newTestS3Repo(f *fakeObjectAPI) *S3Repository {
	return &S3Repository{
		client: f,
		bucket: "gallery",
		prefix: "_gallery/",
		logger: nopLogger{},
	}
}

func putRecord(f *fakeObjectAPI, item Item) {
	body, _ := json.Marshal(item)
	f.objects["_gallery/"+item.ID+".json"] = fakeObject{body: string(body), etag: `"rev-1"`}
}

// ---- tests ----

func TestS3Repository_List_Empty(t *testing.T) {
	repo := newTestS3Repo(newFakeObjectAPI())

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestS3Repository_List_NewestFirstSkipsNonRecords(t *testing.T) {
	f := newFakeObjectAPI()
	putRecord(f, Item{ID: "1", Type: TypeText, Title: "oldest", Content: "x", CreatedAt: "2025-06-01T10:00:00Z"})
	putRecord(f, Item{ID: "3", Type: TypeText, Title: "newest", Content: "x", CreatedAt: "2025-06-01T12:00:00Z"})
	putRecord(f, Item{ID: "2", Type: TypeText, Title: "middle", Content: "x", CreatedAt: "2025-06-01T11:00:00Z"})
	f.objects["_gallery/.keep"] = fakeObject{}

	repo := newTestS3Repo(f)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "3", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, "1", items[2].ID)
}

func TestS3Repository_List_SkipsUndecodableRecord(t *testing.T) {
	f := newFakeObjectAPI()
	putRecord(f, Item{ID: "1", Type: TypeText, Title: "good", Content: "x", CreatedAt: "2025-06-01T10:00:00Z"})
	f.objects["_gallery/broken.json"] = fakeObject{body: "{not json"}

	repo := newTestS3Repo(f)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
}

func TestS3Repository_List_MissingBucketMeansEmpty(t *testing.T) {
	f := newFakeObjectAPI()
	f.listErr = &types.NoSuchBucket{}

	repo := newTestS3Repo(f)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestS3Repository_List_StoreFailurePropagates(t *testing.T) {
	f := newFakeObjectAPI()
	f.listErr = errors.New("boom")

	repo := newTestS3Repo(f)

	_, err := repo.List(context.Background())
	require.Error(t, err)
}

func TestS3Repository_List_GetFailurePropagates(t *testing.T) {
	f := newFakeObjectAPI()
	putRecord(f, Item{ID: "1", CreatedAt: "2025-06-01T10:00:00Z"})
	f.getErr = errors.New("boom")

	repo := newTestS3Repo(f)

	_, err := repo.List(context.Background())
	require.Error(t, err)
}

func TestS3Repository_Create_BootstrapsEmptyCollection(t *testing.T) {
	stubClock(t, timeNow(), 0)

	f := newFakeObjectAPI()
	repo := newTestS3Repo(f)

	item, err := repo.Create(context.Background(), CreateItemRequest{Type: TypeText, Title: "Note", Content: "Hello"})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.NotEmpty(t, item.CreatedAt)

	require.Len(t, f.putKeys, 2)
	assert.Equal(t, "_gallery/.keep", f.putKeys[0])
	assert.Equal(t, "_gallery/"+item.ID+".json", f.putKeys[1])
	assert.Equal(t, "Initialize gallery directory", f.putMeta[0][metadataChangeKey])
	assert.Equal(t, "Add gallery item: Note", f.putMeta[1][metadataChangeKey])

	var stored Item
	require.NoError(t, json.Unmarshal([]byte(f.objects[f.putKeys[1]].body), &stored))
	assert.Equal(t, *item, stored)
}

func TestS3Repository_Create_SkipsBootstrapWhenCollectionExists(t *testing.T) {
	f := newFakeObjectAPI()
	putRecord(f, Item{ID: "1", CreatedAt: "2025-06-01T10:00:00Z"})

	repo := newTestS3Repo(f)

	item, err := repo.Create(context.Background(), CreateItemRequest{Type: TypeText, Title: "Note", Content: "Hello"})
	require.NoError(t, err)

	require.Len(t, f.putKeys, 1)
	assert.Equal(t, "_gallery/"+item.ID+".json", f.putKeys[0])
}

func TestS3Repository_Create_BootstrapFailureStillWritesItem(t *testing.T) {
	f := newFakeObjectAPI()
	f.putFailKeys = map[string]error{"_gallery/.keep": errors.New("denied")}

	repo := newTestS3Repo(f)

	item, err := repo.Create(context.Background(), CreateItemRequest{Type: TypeText, Title: "Note", Content: "Hello"})
	require.NoError(t, err)
	assert.Contains(t, f.putKeys, "_gallery/"+item.ID+".json")
}

func TestS3Repository_Create_WriteFailureLeavesNoItem(t *testing.T) {
	stubClock(t, timeNow(), 0)

	f := newFakeObjectAPI()
	putRecord(f, Item{ID: "1", CreatedAt: "2025-06-01T10:00:00Z"})
	want := NewItem(CreateItemRequest{Type: TypeText, Title: "Note", Content: "Hello"})
	f.putFailKeys = map[string]error{"_gallery/" + want.ID + ".json": errors.New("denied")}

	repo := newTestS3Repo(f)

	_, err := repo.Create(context.Background(), CreateItemRequest{Type: TypeText, Title: "Note", Content: "Hello"})
	require.Error(t, err)
	assert.NotContains(t, f.objects, "_gallery/"+want.ID+".json")
}

func TestS3Repository_Delete_UnknownID(t *testing.T) {
	repo := newTestS3Repo(newFakeObjectAPI())

	err := repo.Delete(context.Background(), "12345")
	assert.True(t, errors.Is(err, shared.ErrorNotFound))
}

func TestS3Repository_Delete_PassesFreshRevisionTag(t *testing.T) {
	f := newFakeObjectAPI()
	putRecord(f, Item{ID: "1", CreatedAt: "2025-06-01T10:00:00Z"})

	repo := newTestS3Repo(f)

	require.NoError(t, repo.Delete(context.Background(), "1"))
	assert.Equal(t, `"rev-1"`, f.lastIfMatch)
	assert.NotContains(t, f.objects, "_gallery/1.json")
}

func TestS3Repository_Delete_ConflictSurfacesAsStoreError(t *testing.T) {
	f := newFakeObjectAPI()
	putRecord(f, Item{ID: "1", CreatedAt: "2025-06-01T10:00:00Z"})
	f.deleteErr = errors.New("precondition failed")

	repo := newTestS3Repo(f)

	err := repo.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, shared.ErrorNotFound))
}

func TestS3Repository_Ping(t *testing.T) {
	f := newFakeObjectAPI()
	repo := newTestS3Repo(f)

	assert.NoError(t, repo.Ping(context.Background()))

	f.headBucketErr = errors.New("unreachable")
	assert.Error(t, repo.Ping(context.Background()))
}

func TestS3Repository_Unconfigured(t *testing.T) {
	cfg := &sc.Config{S3Bucket: "", S3Prefix: "_gallery"}
	repo, err := NewS3Repository(cfg, nopLogger{})
	require.NoError(t, err)

	_, err = repo.List(context.Background())
	assert.True(t, errors.Is(err, shared.ErrorStoreNotConfigured))

	_, err = repo.Create(context.Background(), CreateItemRequest{Type: TypeText, Title: "a", Content: "b"})
	assert.True(t, errors.Is(err, shared.ErrorStoreNotConfigured))

	err = repo.Delete(context.Background(), "1")
	assert.True(t, errors.Is(err, shared.ErrorStoreNotConfigured))

	err = repo.Ping(context.Background())
	assert.True(t, errors.Is(err, shared.ErrorStoreNotConfigured))
}

func TestNewS3Repository_ConfiguredBuildsClient(t *testing.T) {
	cfg := &sc.Config{
		S3RootUser:     "admin",
		S3RootPassword: "secretpassword",
		S3Bucket:       "gallery",
		S3Region:       "us-east-1",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		S3Prefix:       "_gallery",
	}

	repo, err := NewS3Repository(cfg, nopLogger{})
	require.NoError(t, err)
	assert.NotNil(t, repo.client)
	assert.Equal(t, "_gallery/", repo.prefix)
}
