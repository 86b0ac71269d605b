package models

// User представляет пользователя в системе
type User struct {
	FirstName      string `json:"firstName"`      // имя
	LastName       string `json:"lastName"`       // фамилия
	Phone          string `json:"phone"`          // номер телефона, 11 символов, первичный ключ
	HashedPassword string `json:"hashedPassword"` // HMAC-SHA256 хеш пароля (hex)
	TOSAgreement   bool   `json:"tosAgreement"`   // согласие с условиями использования
}

// PublicUser is the representation returned to API callers: the user
// record without its password hash.
type PublicUser struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	TOSAgreement bool   `json:"tosAgreement"`
}

// Public strips the password hash from the user record.
func (u *User) Public() PublicUser {
	return PublicUser{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		TOSAgreement: u.TOSAgreement,
	}
}
