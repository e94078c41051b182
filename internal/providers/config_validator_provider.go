package providers

import (
	"errors"

	"github.com/gookit/validate"

	"sessionstate/internal/codec"
	"sessionstate/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func (v *CnfValidator) Validate() error {
	val := validate.Struct(v.conf)
	if !val.Validate() {
		return errors.New(val.Errors.One())
	}
	if _, err := codec.ParseFormat(v.conf.Store.Format); err != nil {
		return err
	}
	if v.conf.Store.QuarantineTTL < 0 {
		return errors.New("store.quarantineTTL must not be negative")
	}
	return nil
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}
