package repository

import "errors"

// ErrInvalid сигнализирует о структурно некорректном сохраненном значении.
var ErrInvalid = errors.New("invalid input")
