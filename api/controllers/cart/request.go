package cart

const defaultAddQuantity = 1

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	// Quantity defaults to one when omitted.
	Quantity *int `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

func (r addItemRequest) quantity() int {
	if r.Quantity == nil {
		return defaultAddQuantity
	}
	return *r.Quantity
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=100"`
}
