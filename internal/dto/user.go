package dto

type IdentifyUserDto struct {
	GUID string `json:"guid"`
}

type VerifyUserDto struct {
	GUID string `json:"guid" binding:"required"`
}

type UserResponseDto struct {
	GUID string `json:"guid"`
}
