package domain

import "time"

// Transaction is one normalized sale event.
type Transaction struct {
	CustomerID     string `json:"customerId" bson:"customerId"`
	CustomerName   string `json:"customerName" bson:"customerName"`
	PhoneNumber    string `json:"phoneNumber" bson:"phoneNumber"`
	Gender         string `json:"gender" bson:"gender"`
	Age            int    `json:"age" bson:"age"`
	CustomerRegion string `json:"customerRegion" bson:"customerRegion"`
	CustomerType   string `json:"customerType" bson:"customerType"`

	ProductID       string   `json:"productId" bson:"productId"`
	ProductName     string   `json:"productName" bson:"productName"`
	Brand           string   `json:"brand" bson:"brand"`
	ProductCategory string   `json:"productCategory" bson:"productCategory"`
	Tags            []string `json:"tags" bson:"tags"`

	Quantity           int     `json:"quantity" bson:"quantity"`
	PricePerUnit       float64 `json:"pricePerUnit" bson:"pricePerUnit"`
	DiscountPercentage float64 `json:"discountPercentage" bson:"discountPercentage"`
	TotalAmount        float64 `json:"totalAmount" bson:"totalAmount"`
	FinalAmount        float64 `json:"finalAmount" bson:"finalAmount"`

	Date          time.Time `json:"date" bson:"date"`
	PaymentMethod string    `json:"paymentMethod" bson:"paymentMethod"`
	OrderStatus   string    `json:"orderStatus" bson:"orderStatus"`
	DeliveryType  string    `json:"deliveryType" bson:"deliveryType"`
	StoreID       string    `json:"storeId" bson:"storeId"`
	StoreLocation string    `json:"storeLocation" bson:"storeLocation"`
	SalespersonID string    `json:"salespersonId" bson:"salespersonId"`
	EmployeeName  string    `json:"employeeName" bson:"employeeName"`
}
