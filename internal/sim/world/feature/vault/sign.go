package vault

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"realcoins/internal/sim/world/feature/station"
	"realcoins/internal/sim/world/io/itemcodec"
	modelpkg "realcoins/internal/sim/world/kernel/model"
	"realcoins/internal/sim/world/kernel/tags"
)

// markerValue is stored under the coin_sign tag.
const markerValue = "coinStorageChest"

var (
	ErrNoContainer    = errors.New("vault: sign is not attached to a container")
	ErrDuplicateVault = errors.New("vault: container already has a vault sign")
	ErrStationTaken   = errors.New("vault: container is a trading post")
)

// CanAttach checks whether sign may become a vault sign.
func (b *Buffer) CanAttach(sign modelpkg.Location) error {
	if b.reg.Classify(sign) != station.None {
		return ErrDuplicateVault
	}
	support, ok := b.reg.SupportOf(sign)
	if !ok || !b.reg.IsInventoryBlock(support) {
		return ErrNoContainer
	}
	if _, taken := b.reg.FindAdjacentStation(support, station.Vault); taken {
		return ErrDuplicateVault
	}
	if b.reg.IsTradingContainer(support) {
		return ErrStationTaken
	}
	return nil
}

// CreateVault marks sign as owner's vault, registers it and flushes the
// owner's buffer into it.
func (b *Buffer) CreateVault(sign modelpkg.Location, owner modelpkg.PlayerID) error {
	if err := b.CanAttach(sign); err != nil {
		return err
	}
	blob, err := itemcodec.EncodeLocation(sign)
	if err != nil {
		return fmt.Errorf("vault: encode location: %w", err)
	}
	obj := b.tags.Object(sign.Ref())
	obj.Set(tags.CoinSign, markerValue)
	obj.Set(tags.CoinSignOwner, owner.String())

	p := b.player(owner)
	list, _ := p.Get(tags.PlayerVaults)
	if list != "" {
		list += listSep
	}
	p.Set(tags.PlayerVaults, list+blob)

	b.log.Info("vault created", zap.String("sign", sign.Ref()), zap.String("owner", owner.String()))
	b.FlushOnReachable(owner)
	return nil
}
