package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/utils"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name  string  `json:"name" binding:"required"`
	Phone string  `json:"phone" binding:"required"`
	Email *string `json:"email"` // Pointer to allow null
	Notes string  `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

// phoneTaken reports whether another customer of the organization uses phone.
func phoneTaken(c *gin.Context, db *gorm.DB, customer *models.Customer, phone string) bool {
	var existing models.Customer
	err := db.Where("organization_id = ? AND phone = ?", customer.OrganizationID, phone).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return true
	}
	return false
}

// CreateCustomer creates a new customer for the organization
func CreateCustomer(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	phone := utils.CleanPhone(input.Phone)
	if !utils.ValidatePhone(phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	db := config.DB.WithContext(c.Request.Context())
	customer := models.Customer{
		OrganizationID: orgID,
		Name:           input.Name,
		Phone:          phone,
		Notes:          input.Notes,
		IsActive:       true,
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if phoneTaken(c, db, &customer, phone) {
		return
	}

	if err := db.Omit(clause.Associations).Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, customer)
}

// GetCustomers lists customers, optionally filtered by a name or phone search
func GetCustomers(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	query := config.DB.WithContext(c.Request.Context()).Where("organization_id = ?", orgID)
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}

	customers := make([]models.Customer, 0)
	if err := query.Order("name").Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, customers)
}

func findCustomer(c *gin.Context) (*models.Customer, bool) {
	orgID, ok := organizationID(c)
	if !ok {
		return nil, false
	}
	id, ok := paramID(c, "customer")
	if !ok {
		return nil, false
	}

	var customer models.Customer
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ? AND id = ?", orgID, id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &customer, true
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
	customer, ok := findCustomer(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	customer, ok := findCustomer(c)
	if !ok {
		return
	}
	db := config.DB.WithContext(c.Request.Context())

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		phone := utils.CleanPhone(*input.Phone)
		if !utils.ValidatePhone(phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		if customer.Phone != phone && phoneTaken(c, db, customer, phone) {
			return
		}
		customer.Phone = phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := db.Omit(clause.Associations).Save(customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, customer)
}

// DeleteCustomer soft deletes a customer
func DeleteCustomer(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "customer")
	if !ok {
		return
	}

	result := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ? AND id = ?", orgID, id).Delete(&models.Customer{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, nil, "Customer deleted successfully")
}
