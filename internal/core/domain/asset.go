package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// AssetNative is the chain's own coin.
	AssetNative AssetKind = iota
	// AssetToken is any fungible token identified by an address-like string.
	AssetToken

	nativeAssetKey   = "native"
	tokenAssetPrefix = "token:"
)

var (
	assetKindToString = map[AssetKind]string{
		AssetNative: "NATIVE",
		AssetToken:  "TOKEN",
	}
	stringToAssetKind = map[string]AssetKind{
		"NATIVE": AssetNative,
		"TOKEN":  AssetToken,
	}
)

type AssetKind int

func (k AssetKind) String() string {
	str, ok := assetKindToString[k]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

// ParseAssetKind is case insensitive.
func ParseAssetKind(str string) (AssetKind, error) {
	kind, ok := stringToAssetKind[strings.ToUpper(str)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown asset kind %q", ErrInvalidAsset, str)
	}
	return kind, nil
}

// Asset identifies what a deposit is made of. Identifier is set only for
// tokens.
type Asset struct {
	Kind       AssetKind
	Identifier string
}

func NativeAsset() Asset {
	return Asset{Kind: AssetNative}
}

func TokenAsset(identifier string) Asset {
	return Asset{Kind: AssetToken, Identifier: identifier}
}

func (a Asset) IsNative() bool {
	return a.Kind == AssetNative
}

func (a Asset) Validate() error {
	switch a.Kind {
	case AssetNative:
		if a.Identifier != "" {
			return fmt.Errorf("%w: native asset must not have an identifier", ErrInvalidAsset)
		}
	case AssetToken:
		if strings.TrimSpace(a.Identifier) == "" {
			return fmt.Errorf("%w: missing token identifier", ErrInvalidAsset)
		}
		if strings.HasPrefix(a.Identifier, tokenAssetPrefix) {
			return fmt.Errorf("%w: malformed token identifier", ErrInvalidAsset)
		}
	default:
		return fmt.Errorf("%w: unknown asset kind %d", ErrInvalidAsset, a.Kind)
	}
	return nil
}

// Key returns the string used to accumulate amounts of the same asset.
func (a Asset) Key() string {
	if a.IsNative() {
		return nativeAssetKey
	}
	return tokenAssetPrefix + a.Identifier
}

func (a Asset) String() string {
	return a.Key()
}

type AssetAmount struct {
	Asset  Asset
	Amount uint64
}

// sortAssetAmounts orders native first, then tokens by identifier.
func sortAssetAmounts(amounts []AssetAmount) {
	sort.SliceStable(amounts, func(i, j int) bool {
		a, b := amounts[i].Asset, amounts[j].Asset
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Identifier < b.Identifier
	})
}
