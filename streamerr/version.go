// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package streamerr

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is the value of a stream's version attribute, eg. "1.0".
type Version struct {
	Major uint8
	Minor uint8
}

// DefaultVersion is the version this module negotiates, RFC 6120 §4.7.5.
var DefaultVersion = Version{Major: 1, Minor: 0}

// ParseVersion parses a string of the form "Major.Minor" into a Version.
func ParseVersion(s string) (Version, error) {
	var v Version

	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return v, errors.New("streamerr: version must have a single '.' separator")
	}

	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return v, err
	}
	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return v, err
	}
	v.Major = uint8(major)
	v.Minor = uint8(minor)
	return v, nil
}

// String returns the "Major.Minor" representation of v.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// SupportedBy reports whether a peer advertising other's version attribute
// can be negotiated with using the features this module implements. Per
// RFC 6120 §4.7.5, only major version 1 is understood.
func (v Version) SupportedBy(other Version) bool {
	return other.Major == v.Major
}

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (v Version) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: v.String()}, nil
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (v *Version) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := ParseVersion(attr.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
