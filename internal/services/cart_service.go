package services

import (
	"encoding/json"

	"bazaar_backend/internal/models"
	"bazaar_backend/internal/repositories"
	"bazaar_backend/internal/services/dto"
	"bazaar_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CartService interface {
	AddItem(db *gorm.DB, userID string, req *dto.AddCartItemRequest) (*dto.CartResponse, error)
	GetCart(db *gorm.DB, userID string) (*dto.CartResponse, error)
	UpdateItem(db *gorm.DB, userID, itemID string, req *dto.UpdateCartItemRequest) (*dto.CartResponse, error)
	RemoveItem(db *gorm.DB, userID, itemID string) (*dto.CartResponse, error)
	Clear(db *gorm.DB, userID string) error
}

type CartServiceImpl struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) CartService {
	return &CartServiceImpl{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartServiceImpl) AddItem(db *gorm.DB, userID string, req *dto.AddCartItemRequest) (*dto.CartResponse, error) {
	product, err := s.productRepo.FindByID(db, req.ProductID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if !product.IsActive {
		return nil, apperrors.ErrInvalidOperation("cart", "Product is not available")
	}
	if product.Stock < req.Quantity {
		return nil, apperrors.ErrInvalidOperation("cart", "Not enough stock")
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if req.SelectedOptions != nil {
		raw, err := json.Marshal(req.SelectedOptions)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		item.SelectedOptions = datatypes.JSON(raw)
	}

	if err := s.cartRepo.AddItem(db, item); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.GetCart(db, userID)
}

func (s *CartServiceImpl) GetCart(db *gorm.DB, userID string) (*dto.CartResponse, error) {
	items, err := s.cartRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.CartResponse{Items: make([]dto.CartItemResponse, 0, len(items))}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		line := dto.CartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			ShopID:      item.Product.ShopID,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
			LineTotal:   item.Product.Price * float64(item.Quantity),
		}
		if len(item.SelectedOptions) > 0 {
			_ = json.Unmarshal(item.SelectedOptions, &line.SelectedOptions)
		}
		resp.Items = append(resp.Items, line)
		resp.Subtotal += line.LineTotal
	}
	return resp, nil
}

func (s *CartServiceImpl) UpdateItem(db *gorm.DB, userID, itemID string, req *dto.UpdateCartItemRequest) (*dto.CartResponse, error) {
	item, err := s.cartRepo.FindItem(db, userID, itemID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCartItemNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	product, err := s.productRepo.FindByID(db, item.ProductID)
	if err == nil && product.Stock < req.Quantity {
		return nil, apperrors.ErrInvalidOperation("cart", "Not enough stock")
	}

	if err := s.cartRepo.UpdateQuantity(db, itemID, req.Quantity); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.GetCart(db, userID)
}

func (s *CartServiceImpl) RemoveItem(db *gorm.DB, userID, itemID string) (*dto.CartResponse, error) {
	if err := s.cartRepo.RemoveItem(db, userID, itemID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.GetCart(db, userID)
}

func (s *CartServiceImpl) Clear(db *gorm.DB, userID string) error {
	if err := s.cartRepo.ClearForUser(db, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
