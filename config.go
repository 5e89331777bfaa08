package externalmatch

// Network identifies a relayer deployment
type Network int

const (
	NetworkArbitrumSepolia Network = iota
	NetworkArbitrumOne
	NetworkBaseSepolia
	NetworkBaseMainnet
)

// SupportedNetworks lists all supported relayer deployments
var SupportedNetworks = []Network{
	NetworkArbitrumSepolia,
	NetworkArbitrumOne,
	NetworkBaseSepolia,
	NetworkBaseMainnet,
}

// DefaultBaseURLs maps networks to their relayer base URL
var DefaultBaseURLs = map[Network]string{
	NetworkArbitrumSepolia: "https://testnet.auth-server.renegade.fi",
	NetworkArbitrumOne:     "https://mainnet.auth-server.renegade.fi",
	NetworkBaseSepolia:     "https://base-sepolia.auth-server.renegade.fi",
	NetworkBaseMainnet:     "https://base-mainnet.auth-server.renegade.fi",
}
