package collab

// RequestDTO opens a collaboration request against a published portfolio.
// The portfolio id comes from the route path.
type RequestDTO struct {
	Message string `json:"message" binding:"max=2000"`
}

// ResolveDTO accepts or declines an incoming request.
type ResolveDTO struct {
	Status string `json:"status" binding:"required,oneof=accepted declined"`
}
