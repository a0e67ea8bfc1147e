package codec

import (
	"encoding/json"

	"github.com/Suhaibinator/SServer/pkg/common"
)

// JSONCodec is a codec that uses JSON for marshaling and unmarshaling.
// It decodes request bodies into T and encodes U into response bodies.
type JSONCodec[T any, U any] struct{}

// Decode unmarshals the request body into a value of type T.
func (c *JSONCodec[T, U]) Decode(req *common.Request) (T, error) {
	var data T
	err := json.Unmarshal(req.Body, &data)
	return data, err
}

// Encode marshals resp into the response body and sets the content type.
func (c *JSONCodec[T, U]) Encode(w *common.Response, resp U) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	w.SetHeader("Content-Type", "application/json")
	w.SetBody(body)
	return nil
}

// NewJSONCodec creates a new JSONCodec instance for the specified types.
// T represents the request type and U represents the response type.
func NewJSONCodec[T any, U any]() *JSONCodec[T, U] {
	return &JSONCodec[T, U]{}
}
