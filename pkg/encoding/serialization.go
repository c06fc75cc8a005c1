package encoding

// Serializable provides a clean, simple interface for serializing and deserializing values.
type Serializable[T any] interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// Decode deserializes data into a fresh T.
func Decode[T any, PT interface {
	*T
	Serializable[T]
}](data []byte) (T, error) {
	var v T
	if err := PT(&v).Deserialize(data); err != nil {
		return v, err
	}
	return v, nil
}
