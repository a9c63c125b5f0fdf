package token

const dfxManagerABIData = `
[
	{"type": "function", "name": "initialize", "inputs": [{"name": "treasury", "type": "address"}, {"name": "initialTaxRate", "type": "uint256"}], "outputs": []},
	{"type": "function", "name": "initializeWithReservoir", "inputs": [{"name": "treasury", "type": "address"}, {"name": "reservoir", "type": "address"}, {"name": "initialTaxRate", "type": "uint256"}], "outputs": []},
	{"type": "function", "name": "transfer", "inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "setTaxRate", "inputs": [{"name": "newRate", "type": "uint256"}], "outputs": []},
	{"type": "function", "name": "distributeReward", "inputs": [{"name": "user", "type": "address"}, {"name": "amount", "type": "uint256"}], "outputs": []},
	{"type": "function", "name": "grantRole", "inputs": [{"name": "role", "type": "uint8"}, {"name": "account", "type": "address"}], "outputs": []},
	{"type": "function", "name": "revokeRole", "inputs": [{"name": "role", "type": "uint8"}, {"name": "account", "type": "address"}], "outputs": []},
	{"type": "function", "name": "transferOwnership", "inputs": [{"name": "newOwner", "type": "address"}], "outputs": []},
	{"type": "function", "name": "authorizeUpgrade", "inputs": [{"name": "newImplementation", "type": "address"}], "outputs": []},
	{"type": "function", "name": "balanceOf", "stateMutability": "view", "inputs": [{"name": "account", "type": "address"}], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "totalSupply", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "taxRate", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "rewardPool", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "owner", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "name": "hasRole", "stateMutability": "view", "inputs": [{"name": "role", "type": "uint8"}, {"name": "account", "type": "address"}], "outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "name", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "string"}]},
	{"type": "function", "name": "symbol", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "string"}]},
	{"type": "function", "name": "decimals", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "uint8"}]},
	{"type": "event", "name": "Transfer", "inputs": [{"name": "from", "type": "address", "indexed": true}, {"name": "to", "type": "address", "indexed": true}, {"name": "value", "type": "uint256", "indexed": false}]},
	{"type": "event", "name": "TaxUpdated", "inputs": [{"name": "newTaxRate", "type": "uint256", "indexed": false}]},
	{"type": "event", "name": "RewardDistributed", "inputs": [{"name": "user", "type": "address", "indexed": true}, {"name": "amount", "type": "uint256", "indexed": false}]},
	{"type": "event", "name": "RoleGranted", "inputs": [{"name": "role", "type": "uint8", "indexed": false}, {"name": "account", "type": "address", "indexed": true}]},
	{"type": "event", "name": "RoleRevoked", "inputs": [{"name": "role", "type": "uint8", "indexed": false}, {"name": "account", "type": "address", "indexed": true}]},
	{"type": "event", "name": "OwnershipTransferred", "inputs": [{"name": "previousOwner", "type": "address", "indexed": true}, {"name": "newOwner", "type": "address", "indexed": true}]},
	{"type": "event", "name": "UpgradeAuthorized", "inputs": [{"name": "newImplementation", "type": "address", "indexed": true}]}
]
`
