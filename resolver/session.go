/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package resolver

import (
	"github.com/sealdb/neoacl/privilege"
	"github.com/sealdb/neoacl/rights"

	"github.com/sealdb/mysqlstack/xlog"
)

// SessionAccess is one principal's resolved, immutable view of its
// effective rights: user grants merged with every enabled role's
// grants, restricted by the session flags. It answers checks without
// locking; a changed directory yields a new snapshot instead.
type SessionAccess struct {
	log         *xlog.Log
	reg         *privilege.Registry
	params      Params
	userName    string
	rights      *rights.Tree
	grantOption *rights.Tree
	flagsMask   privilege.BitMask
	rolesInfo   *EnabledRolesInfo
}

// Params returns the parameters this snapshot was resolved for.
func (s *SessionAccess) Params() Params {
	return s.params
}

// UserName returns the principal's name, or "" for an unknown
// principal.
func (s *SessionAccess) UserName() string {
	return s.userName
}

// EnabledRoles returns the expanded role set active in this session.
func (s *SessionAccess) EnabledRoles() *EnabledRolesInfo {
	return s.rolesInfo
}

// IsGranted reports whether every bit is effective at path under the
// session flags.
func (s *SessionAccess) IsGranted(bits privilege.BitMask, path ...string) bool {
	return s.effective(path).Contains(bits)
}

// Check returns nil if every bit is effective at path, otherwise an
// *AccessDeniedError naming the missing privileges.
func (s *SessionAccess) Check(bits privilege.BitMask, path ...string) error {
	effective := s.effective(path)
	if effective.Contains(bits) {
		return nil
	}
	missing := bits &^ effective
	err := &AccessDeniedError{
		User:     s.userName,
		Missing:  missing,
		Keywords: s.reg.KeywordsFor(missing),
		Path:     path,
	}
	s.log.Warning("resolver.access.denied.user[%s].privileges[%s].on[%s]",
		s.userName, s.reg.MaskString(missing), FormatPath(path))
	metricDenials.Inc()
	return err
}

// IsGrantedWithGrantOption reports whether every bit is held with grant
// option at path.
func (s *SessionAccess) IsGrantedWithGrantOption(bits privilege.BitMask, path ...string) bool {
	return (s.grantOption.Access(path...) & s.flagsMask).Contains(bits)
}

// CheckGrantOption returns nil if every bit is held with grant option
// at path. A principal may only pass on rights it holds with grant
// option, so GRANT statements check this before mutating the directory.
func (s *SessionAccess) CheckGrantOption(bits privilege.BitMask, path ...string) error {
	effective := s.grantOption.Access(path...) & s.flagsMask
	if effective.Contains(bits) {
		return nil
	}
	missing := bits &^ effective
	err := &AccessDeniedError{
		User:        s.userName,
		Missing:     missing,
		Keywords:    s.reg.KeywordsFor(missing),
		Path:        path,
		GrantOption: true,
	}
	s.log.Warning("resolver.grant.option.denied.user[%s].privileges[%s].on[%s]",
		s.userName, s.reg.MaskString(missing), FormatPath(path))
	metricDenials.Inc()
	return err
}

// CheckKeywords parses keywords through the registry and checks the
// resulting mask at path.
func (s *SessionAccess) CheckKeywords(path []string, keywords ...string) error {
	bits, err := s.reg.BitsForMany(keywords...)
	if err != nil {
		return err
	}
	return s.Check(bits, path...)
}

// Rights returns the merged rights tree, for enumeration by the admin
// API. Callers must not mutate it.
func (s *SessionAccess) Rights() *rights.Tree {
	return s.rights
}

func (s *SessionAccess) effective(path []string) privilege.BitMask {
	return s.rights.Access(path...) & s.flagsMask
}
