package normalizer

// samplePitchBookCSV mimics an export with a three-line preamble above the header.
const samplePitchBookCSV = `PitchBook Data Export
Generated on: 2024-01-01
Search Criteria: Clean Energy Companies
Companies,Website,Industry,Revenue
Acme Corp,https://acme.com,Clean Energy,1000000
Green Energy Inc,www.greenenergy.com,Solar,2000000
Sustainable Solutions,sustainablesolutions.com,Wind,1500000
Test Company,invalid-url,Technology,500000
`
