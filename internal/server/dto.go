package server

import (
	"time"

	"github.com/booklend/rental-service/internal/domain"
)

type rentalRequest struct {
	UserID       int64  `json:"userId" validate:"required,gt=0"`
	RentalStatus string `json:"rentalStatus" validate:"omitempty,oneof=RENT_AVAILABLE RENT_UNAVAILABLE"`
	LateFee      int64  `json:"lateFee" validate:"gte=0"`
}

type rentalPatchRequest struct {
	UserID       *int64  `json:"userId" validate:"omitempty,gt=0"`
	RentalStatus *string `json:"rentalStatus" validate:"omitempty,oneof=RENT_AVAILABLE RENT_UNAVAILABLE"`
	LateFee      *int64  `json:"lateFee" validate:"omitempty,gte=0"`
}

type rentalResponse struct {
	ID            int64                  `json:"id"`
	UserID        int64                  `json:"userId"`
	RentalStatus  string                 `json:"rentalStatus"`
	LateFee       int64                  `json:"lateFee"`
	RentedItems   []rentedItemResponse   `json:"rentedItems,omitempty"`
	ReturnedItems []returnedItemResponse `json:"returnedItems,omitempty"`
}

type rentedItemResponse struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"bookId"`
	BookTitle  string    `json:"bookTitle"`
	RentedDate time.Time `json:"rentedDate"`
	DueDate    time.Time `json:"dueDate"`
	RentalID   *int64    `json:"rentalId,omitempty"`
}

type returnedItemResponse struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"bookId"`
	BookTitle    string    `json:"bookTitle"`
	ReturnedDate time.Time `json:"returnedDate"`
	RentalID     *int64    `json:"rentalId,omitempty"`
}

type overdueItemResponse struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookId"`
	BookTitle string    `json:"bookTitle"`
	DueDate   time.Time `json:"dueDate"`
	RentalID  *int64    `json:"rentalId,omitempty"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func toRentalResponse(rental *domain.Rental) rentalResponse {
	resp := rentalResponse{
		ID:           rental.ID,
		UserID:       rental.UserID,
		RentalStatus: string(rental.RentalStatus),
		LateFee:      rental.LateFee,
	}

	for _, item := range rental.RentedItems {
		resp.RentedItems = append(resp.RentedItems, toRentedItemResponse(item))
	}
	for _, item := range rental.ReturnedItems {
		resp.ReturnedItems = append(resp.ReturnedItems, toReturnedItemResponse(item))
	}

	return resp
}

func toRentedItemResponse(item domain.RentedItem) rentedItemResponse {
	return rentedItemResponse{
		ID:         item.ID,
		BookID:     item.BookID,
		BookTitle:  item.BookTitle,
		RentedDate: item.RentedDate,
		DueDate:    item.DueDate,
		RentalID:   item.RentalID,
	}
}

func toReturnedItemResponse(item domain.ReturnedItem) returnedItemResponse {
	return returnedItemResponse{
		ID:           item.ID,
		BookID:       item.BookID,
		BookTitle:    item.BookTitle,
		ReturnedDate: item.ReturnedDate,
		RentalID:     item.RentalID,
	}
}

func toOverdueItemResponse(item domain.OverdueItem) overdueItemResponse {
	return overdueItemResponse{
		ID:        item.ID,
		BookID:    item.BookID,
		BookTitle: item.BookTitle,
		DueDate:   item.DueDate,
		RentalID:  item.RentalID,
	}
}
