package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
)

func registerHandler(c *gin.Context) {
	var body struct {
		Business models.NewBusiness `json:"business" binding:"required"`
		User     models.NewUser     `json:"user" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	business, err := models.CreateBusiness(ctx, &body.Business)
	if err != nil {
		respondError(c, err)
		return
	}

	body.User.Role = "admin"
	user, err := models.CreateUser(ctx, business.ID.String(), &body.User)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.JwtGenerate(user.ID, user.BusinessId, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"business": business, "user": user, "token": token})
}

func loginHandler(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := models.Authenticate(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := utils.JwtGenerate(user.ID, user.BusinessId, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func createIngredientHandler(c *gin.Context) {
	var input models.NewIngredient
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ingredient, err := models.CreateIngredient(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func updateIngredientHandler(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var input models.NewIngredient
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ingredient, err := models.UpdateIngredient(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func listIngredientsHandler(c *gin.Context) {
	ingredients, err := models.ListIngredients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func lowStockHandler(c *gin.Context) {
	ingredients, err := models.LowStockIngredients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func listSuppliersHandler(c *gin.Context) {
	suppliers, err := models.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

func upsertSupplierIngredientHandler(c *gin.Context) {
	var input models.NewSupplierIngredient
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	si, err := models.UpsertSupplierIngredient(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, si)
}

func createRecipeHandler(c *gin.Context) {
	var input models.NewRecipe
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	recipe, err := models.CreateRecipe(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func listRecipesHandler(c *gin.Context) {
	recipes, err := models.ListRecipes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func createEventHandler(c *gin.Context) {
	var input models.NewEvent
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	event, err := models.CreateEvent(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func listEventsHandler(c *gin.Context) {
	filter, err := eventFilterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	// listing has no implicit status default
	if c.Query("statuses") == "" {
		filter.Statuses = nil
	}
	events, err := models.ListEvents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
