package dto

type RegisterInput struct {
	Email    string `form:"email" binding:"required,email,max=250"`
	Password string `form:"password" binding:"required"`
	Name     string `form:"name" binding:"required,max=80"`
}

type LoginInput struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}
