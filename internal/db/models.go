package db

import "github.com/gitshopapp/gemcart/internal/models"

type Product = models.Product
