package domain

// Payload описывает дополнительную информацию вектора во внешнем векторном индексе.
type Payload map[string]any

const (
	PayloadPosition = "position"
	PayloadNumber   = "number"
	PayloadFilename = "filename"
)

// Embedding — точка векторного индекса: идентификатор точки, вектор и метаданные.
type Embedding struct {
	ID      int64
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id int64, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

func NewPayload(position int, number int64, filename string) Payload {
	return Payload{
		PayloadPosition: int64(position),
		PayloadNumber:   number,
		PayloadFilename: filename,
	}
}

// Embedding переводит запись галереи в точку векторного индекса. Идентификатор точки равен
// позиции: номера товаров в галерее могут повторяться.
func (g GalleryEntry) Embedding() *Embedding {
	return NewEmbedding(int64(g.Position), g.Vector, NewPayload(g.Position, g.Number, g.Filename))
}
