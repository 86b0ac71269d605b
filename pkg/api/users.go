package api

// CreateUserRequest представляет запрос на создание пользователя (POST /users)
type CreateUserRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`    // ровно 11 символов
	Password     string `json:"password"` // пароль в открытом виде, на сервере хешируется
	TOSAgreement bool   `json:"tosAgreement"`
}

// UpdateUserRequest представляет запрос на изменение пользователя (PUT /users)
// Phone обязателен, из остальных полей должно быть заполнено хотя бы одно
type UpdateUserRequest struct {
	Phone     string `json:"phone"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Password  string `json:"password,omitempty"`
}

// User представляет пользователя в ответе GET /users (без хеша пароля)
type User struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	TOSAgreement bool   `json:"tosAgreement"`
}
