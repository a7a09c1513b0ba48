package dto

// KeysRequest carries the key list for the batch store endpoints.
type KeysRequest struct {
	Keys []string `json:"keys"`
}
