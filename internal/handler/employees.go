package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"presence/internal/clock"
	"presence/internal/employee"
)

type employeeRequest struct {
	LastName           string  `json:"lastName"`
	FirstName          string  `json:"firstName"`
	RegistrationNumber string  `json:"registrationNumber"`
	Email              *string `json:"email"`
	Phone              string  `json:"phone"`
	Department         string  `json:"department"`
	Position           string  `json:"position"`
	HireDate           string  `json:"hireDate"`
	Address            string  `json:"address"`
	City               string  `json:"city"`
	PostalCode         string  `json:"postalCode"`
}

// employee converts the request. hireDate accepts YYYY-MM-DD or RFC 3339.
func (r employeeRequest) employee() (employee.Employee, error) {
	e := employee.Employee{
		LastName:           r.LastName,
		FirstName:          r.FirstName,
		RegistrationNumber: r.RegistrationNumber,
		Email:              r.Email,
		Phone:              r.Phone,
		Department:         r.Department,
		Position:           r.Position,
		Address:            r.Address,
		City:               r.City,
		PostalCode:         r.PostalCode,
	}
	if r.HireDate != "" {
		d, err := time.Parse(clock.DateLayout, r.HireDate)
		if err != nil {
			if d, err = time.Parse(time.RFC3339, r.HireDate); err != nil {
				return employee.Employee{}, fmt.Errorf("%w: hireDate must be YYYY-MM-DD", employee.ErrInvalid)
			}
		}
		e.HireDate = &d
	}
	return e, nil
}

func (h *Handler) listEmployees(c *gin.Context) {
	list, err := h.d.Employees.List(c.Request.Context(), c.Query("department"))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []employee.Employee{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) getEmployee(c *gin.Context) {
	e, err := h.d.Employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) bindEmployee(c *gin.Context) (employee.Employee, bool) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return employee.Employee{}, false
	}
	e, err := req.employee()
	if err != nil {
		writeError(c, err)
		return employee.Employee{}, false
	}
	return e, true
}

func (h *Handler) createEmployee(c *gin.Context) {
	in, ok := h.bindEmployee(c)
	if !ok {
		return
	}
	e, err := h.d.Employees.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) updateEmployee(c *gin.Context) {
	in, ok := h.bindEmployee(c)
	if !ok {
		return
	}
	e, err := h.d.Employees.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) deleteEmployee(c *gin.Context) {
	if err := h.d.Employees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) employeeQR(c *gin.Context) {
	data, err := h.d.Employees.GenerateQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qrCodeData": data})
}
