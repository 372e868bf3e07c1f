package apperrors

import (
	"fmt"
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для доменных ошибок (auth-сессии, ваучеры, каталог).
*/

// =========================================================================
// Фабричные ФУНКЦИИ (оборачивание ошибок репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Auth & Sessions
// =========================================================================

// ErrInvalidCredentials - неверный email или пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized, // 401
)

// ErrAccountBanned - аккаунт забанен администратором.
// Проверяется ПОСЛЕ пароля, чтобы не раскрывать существование аккаунта.
var ErrAccountBanned = New(
	CodeForbidden,
	"auth",
	"Your account has been banned",
	http.StatusForbidden, // 403
)

// ErrAccountPending - аккаунт еще не активирован.
var ErrAccountPending = New(
	CodeForbidden,
	"auth",
	"Your account is pending activation",
	http.StatusForbidden, // 403
)

// ErrTokenInvalid - подпись токена не прошла проверку или токен поврежден.
var ErrTokenInvalid = New(
	CodeInvalidToken,
	"auth",
	"Invalid token",
	http.StatusUnauthorized, // 401
)

// ErrTokenExpired - срок действия токена истек.
var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token has expired",
	http.StatusUnauthorized, // 401
)

// ErrWrongTokenType - предъявлен access-токен вместо refresh (или наоборот).
var ErrWrongTokenType = New(
	CodeInvalidToken,
	"auth",
	"Wrong token type",
	http.StatusUnauthorized, // 401
)

// ErrUserNotFound - субъект токена больше не существует.
var ErrUserNotFound = New(
	CodeUnauthorized,
	"auth",
	"User not found",
	http.StatusUnauthorized, // 401
)

// ErrTokenRevoked - refresh-токен был отозван напрямую (logout, бан).
var ErrTokenRevoked = New(
	CodeTokenRevoked,
	"auth",
	"Token has been revoked",
	http.StatusUnauthorized, // 401
)

// ErrTokenReuseDetected - повторное предъявление уже ротированного refresh-токена.
// Сигнал кражи: вся семья сессий пользователя отзывается как побочный эффект.
var ErrTokenReuseDetected = New(
	CodeTokenReuse,
	"auth",
	"Token reuse detected, all sessions have been revoked",
	http.StatusUnauthorized, // 401
)

// ErrInsufficientPermissions - у роли нет прав на действие.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden, // 403
)

// ErrEmailAlreadyExists - email уже используется.
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict, // 409
)

// ErrWeakPassword - пароль слишком слабый.
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest, // 400
)

// =========================================================================
// Vouchers (чекаут)
// =========================================================================

// ErrVoucherNotFound - ваучер с таким кодом не найден.
var ErrVoucherNotFound = New(
	CodeNotFound,
	"voucher",
	"Voucher not found",
	http.StatusNotFound, // 404
)

// ErrVoucherTypeMismatch - тип ваучера не соответствует ожидаемому.
var ErrVoucherTypeMismatch = New(
	CodeVoucherRejected,
	"voucher",
	"Voucher type mismatch",
	http.StatusBadRequest, // 400
)

// ErrVoucherShopMismatch - ваучер принадлежит другому магазину.
var ErrVoucherShopMismatch = New(
	CodeVoucherRejected,
	"voucher",
	"Voucher does not belong to this shop",
	http.StatusBadRequest, // 400
)

// ErrVoucherNotActive - статус ваучера не active.
var ErrVoucherNotActive = New(
	CodeVoucherRejected,
	"voucher",
	"Voucher is not active",
	http.StatusBadRequest, // 400
)

// ErrVoucherNotYetActive - окно действия еще не началось.
var ErrVoucherNotYetActive = New(
	CodeVoucherRejected,
	"voucher",
	"Voucher is not yet active",
	http.StatusBadRequest, // 400
)

// ErrVoucherExpired - окно действия закончилось.
var ErrVoucherExpired = New(
	CodeVoucherRejected,
	"voucher",
	"Voucher has expired",
	http.StatusBadRequest, // 400
)

// ErrVoucherMinimumNotMet - фабрика: сумма заказа меньше минимальной.
// Сообщение включает код ваучера.
func ErrVoucherMinimumNotMet(code string, minOrderValue float64) *AppError {
	return New(
		CodeVoucherRejected,
		"voucher",
		fmt.Sprintf("Minimum order value of %.2f not met for voucher %s", minOrderValue, code),
		http.StatusBadRequest, // 400
	)
}

// ErrDuplicateShopVoucher - два ваучера на один магазин в одном чекауте.
var ErrDuplicateShopVoucher = New(
	CodeVoucherRejected,
	"voucher",
	"Each shop can only apply one voucher",
	http.StatusBadRequest, // 400
)

// ErrVoucherShopNotInCart - ваучер магазина, которого нет в корзине.
var ErrVoucherShopNotInCart = New(
	CodeVoucherRejected,
	"voucher",
	"Voucher applied to a shop not in the cart",
	http.StatusBadRequest, // 400
)

// =========================================================================
// Catalog & Shops
// =========================================================================

// ErrShopAlreadyExists - у продавца уже есть магазин.
var ErrShopAlreadyExists = New(
	CodeAlreadyExists,
	"shop",
	"Seller already owns a shop",
	http.StatusConflict, // 409
)

// ErrShopNotApproved - магазин еще не одобрен администратором.
var ErrShopNotApproved = New(
	CodeInvalidStatus,
	"shop",
	"Shop is not approved yet",
	http.StatusForbidden, // 403
)

// ErrCategoryHasChildren - нельзя удалить категорию с подкатегориями.
var ErrCategoryHasChildren = New(
	CodeConflict,
	"catalog",
	"Category still has subcategories",
	http.StatusConflict, // 409
)

// ErrReviewAlreadyExists - покупатель уже оставил отзыв на этот товар в заказе.
var ErrReviewAlreadyExists = New(
	CodeAlreadyExists,
	"review",
	"Review for this product already exists",
	http.StatusConflict, // 409
)

// ErrCartEmpty - чекаут пустой корзины.
var ErrCartEmpty = New(
	CodeInvalidOperation,
	"checkout",
	"Cart is empty",
	http.StatusBadRequest, // 400
)

// ErrCannotModifySelf - админ пытается забанить сам себя.
var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden, // 403
)
