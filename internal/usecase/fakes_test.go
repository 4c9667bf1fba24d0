package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/imaging"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

// fakeExtractor возвращает первые dim значений входного тензора как вектор признаков.
type fakeExtractor struct {
	dim   int
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeExtractor) Layout() imaging.Layout { return imaging.LayoutNHWC }

func (f *fakeExtractor) Extract(_ context.Context, input []float32) (domain.FeatureVector, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(domain.FeatureVector, f.dim)
	copy(out, input)
	return out, nil
}

func (f *fakeExtractor) ExtractBatch(ctx context.Context, inputs [][]float32) ([]domain.FeatureVector, error) {
	out := make([]domain.FeatureVector, len(inputs))
	for i, in := range inputs {
		v, err := f.Extract(ctx, in)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fakeImages хранит размещённые изображения в памяти и запоминает очищенные ключи.
type fakeImages struct {
	mu       sync.Mutex
	objects  map[string][]byte
	cleaned  []string
	stageErr error
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: make(map[string][]byte)}
}

func (f *fakeImages) StageImages(_ context.Context, req *StageImagesReq) (*StageImagesRes, error) {
	if f.stageErr != nil {
		return nil, f.stageErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, len(req.Images))
	for i, img := range req.Images {
		key := fmt.Sprintf("%s/%d", req.Prefix, i)
		f.objects[key] = img.Data
		keys[i] = key
	}
	return NewStageImagesRes(keys), nil
}

func (f *fakeImages) OpenImage(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.objects, k)
	}
	f.cleaned = append(f.cleaned, keys...)
}

type fakeGallery struct {
	hits []GalleryHit
	err  error
	gotK int
}

func (f *fakeGallery) Dim() int { return 4 }

func (f *fakeGallery) Nearest(_ context.Context, _ domain.FeatureVector, k int) ([]GalleryHit, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

type fakeLinks map[int64]string

func (f fakeLinks) LinkByID(_ context.Context, id int64) (string, bool, error) {
	link, ok := f[id]
	return link, ok, nil
}

type fakeCatalog []domain.CatalogRecord

func (f fakeCatalog) All(context.Context) ([]domain.CatalogRecord, error) {
	return f, nil
}

// fakeCredRepo хранит учётные записи по разделам ролей.
type fakeCredRepo struct {
	mu    sync.Mutex
	parts map[domain.Role]map[string]*domain.Credential
	err   error
}

func newFakeCredRepo() *fakeCredRepo {
	return &fakeCredRepo{parts: map[domain.Role]map[string]*domain.Credential{
		domain.RoleCustomer: {},
		domain.RoleSeller:   {},
	}}
}

func (f *fakeCredRepo) Create(_ context.Context, cred *domain.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	part := f.parts[cred.Role]
	if _, ok := part[cred.ID]; ok {
		return e.ErrUserAlreadyExists
	}
	part[cred.ID] = cred
	return nil
}

func (f *fakeCredRepo) Get(_ context.Context, role domain.Role, id string) (*domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cred, ok := f.parts[role][id]
	if !ok {
		return nil, e.ErrCredentialNotFound
	}
	return cred, nil
}

type fakeOutbox struct {
	events []*OutboxEvent
}

func (f *fakeOutbox) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeOutbox) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutbox) Release(context.Context, int64, int) error { return nil }

func (f *fakeOutbox) RequeueStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeChatModel struct {
	mu       sync.Mutex
	calls    int
	histLens []int
	reply    string
	err      error
}

func (f *fakeChatModel) Generate(_ context.Context, history []domain.ChatTurn, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.histLens = append(f.histLens, len(history))
	if f.err != nil {
		return "", f.err
	}
	return f.reply + ":" + message, nil
}

type fakeHistory struct {
	mu       sync.Mutex
	sessions map[string][]domain.ChatTurn
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{sessions: make(map[string][]domain.ChatTurn)}
}

func (f *fakeHistory) Get(_ context.Context, id string) ([]domain.ChatTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ChatTurn(nil), f.sessions[id]...), nil
}

func (f *fakeHistory) Append(_ context.Context, id string, turns ...domain.ChatTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id] = append(f.sessions[id], turns...)
	return nil
}

// pngBytes кодирует синтетическое изображение w×h с узором, зависящим от seed.
func pngBytes(w, h, seed int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*seed + y) % 256),
				G: uint8((y*seed*3 + x) % 256),
				B: uint8((x + y) * seed % 256),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
